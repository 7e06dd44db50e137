package consequence

// Consequence names.
const (
	NameInsertRow             = "insert-row"
	NameLockRow               = "lock-row"
	NameModifyPendingChange   = "modify-pending-change"
	NameDeleteRows            = "delete-rows"
	NameRejectOne             = "reject-one"
	NameRejectBatch           = "reject-batch"
	NameMarkAsConflict        = "mark-as-conflict"
	NameMarkAsMerged          = "mark-as-merged"
	NameReassignAnonChanges   = "reassign-anon-changes"
	NameApproveEdit           = "approve-edit"
	NameApproveMove           = "approve-move"
	NameApproveUpload         = "approve-upload"
	NameAddLogEntry           = "add-log-entry"
	NameBlockUser             = "block-user"
	NameUnblockUser           = "unblock-user"
	NameInvalidatePendingTime = "invalidate-pending-time"
)

package domain

// Kind is the operation kind of a pending change.
type Kind string

const (
	KindEdit   Kind = "edit"
	KindMove   Kind = "move"
	KindUpload Kind = "upload"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case KindEdit, KindMove, KindUpload:
		return true
	}
	return false
}

// LogSubtype is the action recorded in the moderation log.
type LogSubtype string

const (
	LogApprove     LogSubtype = "approve"
	LogApproveAll  LogSubtype = "approveall"
	LogApproveMove LogSubtype = "approve-move"
	LogReject      LogSubtype = "reject"
	LogRejectAll   LogSubtype = "rejectall"
	LogMerge       LogSubtype = "merge"
	LogEditChange  LogSubtype = "editchange"
	LogBlock       LogSubtype = "block"
	LogUnblock     LogSubtype = "unblock"
)

func (s LogSubtype) String() string { return string(s) }

func (s LogSubtype) IsValid() bool {
	switch s {
	case LogApprove, LogApproveAll, LogApproveMove, LogReject, LogRejectAll,
		LogMerge, LogEditChange, LogBlock, LogUnblock:
		return true
	}
	return false
}

// Folder selects a subset of queue rows for listing.
type Folder string

const (
	FolderPending  Folder = "pending"
	FolderRejected Folder = "rejected"
	FolderMerged   Folder = "merged"
	FolderSpam     Folder = "spam"
)

func (f Folder) String() string { return string(f) }

func (f Folder) IsValid() bool {
	switch f {
	case FolderPending, FolderRejected, FolderMerged, FolderSpam:
		return true
	}
	return false
}

// SaveStatus is the outcome of a successful pipeline call.
type SaveStatus string

const (
	// SaveStatusSaved means a new record was written.
	SaveStatusSaved SaveStatus = "saved"
	// SaveStatusNoChange means the content equals the current revision and
	// nothing was written.
	SaveStatusNoChange SaveStatus = "nochange"
)

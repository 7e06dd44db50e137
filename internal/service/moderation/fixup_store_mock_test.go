package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/fixup"
)

var _ fixup.Store = &fixupStoreMock{}

type fixupStoreMock struct {
	ChangeFeedIDsFunc            func(ctx context.Context, revIDs []int64, logIDs []int64) ([]fixup.ChangeFeedRef, error)
	FillAuditRevIDsFunc          func(ctx context.Context, revByLog map[int64]int64) error
	InsertTagsFunc               func(ctx context.Context, tags []fixup.TagAssoc) error
	PriorTimestampsFunc          func(ctx context.Context, revIDs []int64) (map[int64]time.Time, error)
	TaggedRecordsFunc            func(ctx context.Context, rcIDs []int64) (map[int64]bool, error)
	UpdateChangeFeedFunc         func(ctx context.Context, updates []fixup.ChangeFeedUpdate) error
	UpdateCheckUserFunc          func(ctx context.Context, updates []fixup.CheckUserUpdate) error
	UpdateLogEntriesFunc         func(ctx context.Context, ts map[int64]time.Time) error
	UpdateRevisionTimestampsFunc func(ctx context.Context, ts map[int64]time.Time) error

	calls struct {
		ChangeFeedIDs []struct {
			Ctx    context.Context
			RevIDs []int64
			LogIDs []int64
		}
		FillAuditRevIDs []struct {
			Ctx      context.Context
			RevByLog map[int64]int64
		}
		InsertTags []struct {
			Ctx  context.Context
			Tags []fixup.TagAssoc
		}
		PriorTimestamps []struct {
			Ctx    context.Context
			RevIDs []int64
		}
		TaggedRecords []struct {
			Ctx   context.Context
			RcIDs []int64
		}
		UpdateChangeFeed []struct {
			Ctx     context.Context
			Updates []fixup.ChangeFeedUpdate
		}
		UpdateCheckUser []struct {
			Ctx     context.Context
			Updates []fixup.CheckUserUpdate
		}
		UpdateLogEntries []struct {
			Ctx context.Context
			Ts  map[int64]time.Time
		}
		UpdateRevisionTimestamps []struct {
			Ctx context.Context
			Ts  map[int64]time.Time
		}
	}
	lockChangeFeedIDs            sync.RWMutex
	lockFillAuditRevIDs          sync.RWMutex
	lockInsertTags               sync.RWMutex
	lockPriorTimestamps          sync.RWMutex
	lockTaggedRecords            sync.RWMutex
	lockUpdateChangeFeed         sync.RWMutex
	lockUpdateCheckUser          sync.RWMutex
	lockUpdateLogEntries         sync.RWMutex
	lockUpdateRevisionTimestamps sync.RWMutex
}

func (mock *fixupStoreMock) ChangeFeedIDs(ctx context.Context, revIDs []int64, logIDs []int64) ([]fixup.ChangeFeedRef, error) {
	if mock.ChangeFeedIDsFunc == nil {
		panic("fixupStoreMock.ChangeFeedIDsFunc: method is nil but Store.ChangeFeedIDs was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		RevIDs []int64
		LogIDs []int64
	}{Ctx: ctx, RevIDs: revIDs, LogIDs: logIDs}
	mock.lockChangeFeedIDs.Lock()
	mock.calls.ChangeFeedIDs = append(mock.calls.ChangeFeedIDs, callInfo)
	mock.lockChangeFeedIDs.Unlock()
	return mock.ChangeFeedIDsFunc(ctx, revIDs, logIDs)
}

func (mock *fixupStoreMock) ChangeFeedIDsCalls() []struct {
	Ctx    context.Context
	RevIDs []int64
	LogIDs []int64
} {
	mock.lockChangeFeedIDs.RLock()
	calls := mock.calls.ChangeFeedIDs
	mock.lockChangeFeedIDs.RUnlock()
	return calls
}

func (mock *fixupStoreMock) FillAuditRevIDs(ctx context.Context, revByLog map[int64]int64) error {
	if mock.FillAuditRevIDsFunc == nil {
		panic("fixupStoreMock.FillAuditRevIDsFunc: method is nil but Store.FillAuditRevIDs was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		RevByLog map[int64]int64
	}{Ctx: ctx, RevByLog: revByLog}
	mock.lockFillAuditRevIDs.Lock()
	mock.calls.FillAuditRevIDs = append(mock.calls.FillAuditRevIDs, callInfo)
	mock.lockFillAuditRevIDs.Unlock()
	return mock.FillAuditRevIDsFunc(ctx, revByLog)
}

func (mock *fixupStoreMock) FillAuditRevIDsCalls() []struct {
	Ctx      context.Context
	RevByLog map[int64]int64
} {
	mock.lockFillAuditRevIDs.RLock()
	calls := mock.calls.FillAuditRevIDs
	mock.lockFillAuditRevIDs.RUnlock()
	return calls
}

func (mock *fixupStoreMock) InsertTags(ctx context.Context, tags []fixup.TagAssoc) error {
	if mock.InsertTagsFunc == nil {
		panic("fixupStoreMock.InsertTagsFunc: method is nil but Store.InsertTags was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Tags []fixup.TagAssoc
	}{Ctx: ctx, Tags: tags}
	mock.lockInsertTags.Lock()
	mock.calls.InsertTags = append(mock.calls.InsertTags, callInfo)
	mock.lockInsertTags.Unlock()
	return mock.InsertTagsFunc(ctx, tags)
}

func (mock *fixupStoreMock) InsertTagsCalls() []struct {
	Ctx  context.Context
	Tags []fixup.TagAssoc
} {
	mock.lockInsertTags.RLock()
	calls := mock.calls.InsertTags
	mock.lockInsertTags.RUnlock()
	return calls
}

func (mock *fixupStoreMock) PriorTimestamps(ctx context.Context, revIDs []int64) (map[int64]time.Time, error) {
	if mock.PriorTimestampsFunc == nil {
		panic("fixupStoreMock.PriorTimestampsFunc: method is nil but Store.PriorTimestamps was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		RevIDs []int64
	}{Ctx: ctx, RevIDs: revIDs}
	mock.lockPriorTimestamps.Lock()
	mock.calls.PriorTimestamps = append(mock.calls.PriorTimestamps, callInfo)
	mock.lockPriorTimestamps.Unlock()
	return mock.PriorTimestampsFunc(ctx, revIDs)
}

func (mock *fixupStoreMock) PriorTimestampsCalls() []struct {
	Ctx    context.Context
	RevIDs []int64
} {
	mock.lockPriorTimestamps.RLock()
	calls := mock.calls.PriorTimestamps
	mock.lockPriorTimestamps.RUnlock()
	return calls
}

func (mock *fixupStoreMock) TaggedRecords(ctx context.Context, rcIDs []int64) (map[int64]bool, error) {
	if mock.TaggedRecordsFunc == nil {
		panic("fixupStoreMock.TaggedRecordsFunc: method is nil but Store.TaggedRecords was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		RcIDs []int64
	}{Ctx: ctx, RcIDs: rcIDs}
	mock.lockTaggedRecords.Lock()
	mock.calls.TaggedRecords = append(mock.calls.TaggedRecords, callInfo)
	mock.lockTaggedRecords.Unlock()
	return mock.TaggedRecordsFunc(ctx, rcIDs)
}

func (mock *fixupStoreMock) TaggedRecordsCalls() []struct {
	Ctx   context.Context
	RcIDs []int64
} {
	mock.lockTaggedRecords.RLock()
	calls := mock.calls.TaggedRecords
	mock.lockTaggedRecords.RUnlock()
	return calls
}

func (mock *fixupStoreMock) UpdateChangeFeed(ctx context.Context, updates []fixup.ChangeFeedUpdate) error {
	if mock.UpdateChangeFeedFunc == nil {
		panic("fixupStoreMock.UpdateChangeFeedFunc: method is nil but Store.UpdateChangeFeed was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Updates []fixup.ChangeFeedUpdate
	}{Ctx: ctx, Updates: updates}
	mock.lockUpdateChangeFeed.Lock()
	mock.calls.UpdateChangeFeed = append(mock.calls.UpdateChangeFeed, callInfo)
	mock.lockUpdateChangeFeed.Unlock()
	return mock.UpdateChangeFeedFunc(ctx, updates)
}

func (mock *fixupStoreMock) UpdateChangeFeedCalls() []struct {
	Ctx     context.Context
	Updates []fixup.ChangeFeedUpdate
} {
	mock.lockUpdateChangeFeed.RLock()
	calls := mock.calls.UpdateChangeFeed
	mock.lockUpdateChangeFeed.RUnlock()
	return calls
}

func (mock *fixupStoreMock) UpdateCheckUser(ctx context.Context, updates []fixup.CheckUserUpdate) error {
	if mock.UpdateCheckUserFunc == nil {
		panic("fixupStoreMock.UpdateCheckUserFunc: method is nil but Store.UpdateCheckUser was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Updates []fixup.CheckUserUpdate
	}{Ctx: ctx, Updates: updates}
	mock.lockUpdateCheckUser.Lock()
	mock.calls.UpdateCheckUser = append(mock.calls.UpdateCheckUser, callInfo)
	mock.lockUpdateCheckUser.Unlock()
	return mock.UpdateCheckUserFunc(ctx, updates)
}

func (mock *fixupStoreMock) UpdateCheckUserCalls() []struct {
	Ctx     context.Context
	Updates []fixup.CheckUserUpdate
} {
	mock.lockUpdateCheckUser.RLock()
	calls := mock.calls.UpdateCheckUser
	mock.lockUpdateCheckUser.RUnlock()
	return calls
}

func (mock *fixupStoreMock) UpdateLogEntries(ctx context.Context, ts map[int64]time.Time) error {
	if mock.UpdateLogEntriesFunc == nil {
		panic("fixupStoreMock.UpdateLogEntriesFunc: method is nil but Store.UpdateLogEntries was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ts  map[int64]time.Time
	}{Ctx: ctx, Ts: ts}
	mock.lockUpdateLogEntries.Lock()
	mock.calls.UpdateLogEntries = append(mock.calls.UpdateLogEntries, callInfo)
	mock.lockUpdateLogEntries.Unlock()
	return mock.UpdateLogEntriesFunc(ctx, ts)
}

func (mock *fixupStoreMock) UpdateLogEntriesCalls() []struct {
	Ctx context.Context
	Ts  map[int64]time.Time
} {
	mock.lockUpdateLogEntries.RLock()
	calls := mock.calls.UpdateLogEntries
	mock.lockUpdateLogEntries.RUnlock()
	return calls
}

func (mock *fixupStoreMock) UpdateRevisionTimestamps(ctx context.Context, ts map[int64]time.Time) error {
	if mock.UpdateRevisionTimestampsFunc == nil {
		panic("fixupStoreMock.UpdateRevisionTimestampsFunc: method is nil but Store.UpdateRevisionTimestamps was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ts  map[int64]time.Time
	}{Ctx: ctx, Ts: ts}
	mock.lockUpdateRevisionTimestamps.Lock()
	mock.calls.UpdateRevisionTimestamps = append(mock.calls.UpdateRevisionTimestamps, callInfo)
	mock.lockUpdateRevisionTimestamps.Unlock()
	return mock.UpdateRevisionTimestampsFunc(ctx, ts)
}

func (mock *fixupStoreMock) UpdateRevisionTimestampsCalls() []struct {
	Ctx context.Context
	Ts  map[int64]time.Time
} {
	mock.lockUpdateRevisionTimestamps.RLock()
	calls := mock.calls.UpdateRevisionTimestamps
	mock.lockUpdateRevisionTimestamps.RUnlock()
	return calls
}

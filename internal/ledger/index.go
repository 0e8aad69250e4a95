package ledger

import "github.com/sandeepkv93/bossmode/internal/model"

// IsCompleted reports whether records hold an entry for exactly this task and
// instance date.
func IsCompleted(taskID, instanceDate string, records []model.CompletionRecord) bool {
	for _, rec := range records {
		if rec.TaskID == taskID && rec.InstanceDate == instanceDate {
			return true
		}
	}
	return false
}

// Index is a read-only set of completed (task, date) pairs.
type Index map[string]map[string]struct{}

func NewIndex(records []model.CompletionRecord) Index {
	idx := make(Index)
	for _, rec := range records {
		dates, ok := idx[rec.TaskID]
		if !ok {
			dates = make(map[string]struct{})
			idx[rec.TaskID] = dates
		}
		dates[rec.InstanceDate] = struct{}{}
	}
	return idx
}

func (idx Index) Has(taskID, instanceDate string) bool {
	_, ok := idx[taskID][instanceDate]
	return ok
}

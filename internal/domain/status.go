package domain

// PublishingStatus is the lifecycle state of one language of one version.
type PublishingStatus string

const (
	StatusDraft        PublishingStatus = "Draft"
	StatusPublished    PublishingStatus = "Published"
	StatusModified     PublishingStatus = "Modified"
	StatusDeleted      PublishingStatus = "Deleted"
	StatusOldPublished PublishingStatus = "OldPublished"
)

// PublishingStatuses lists every status, in aggregate precedence order.
var PublishingStatuses = []PublishingStatus{
	StatusPublished,
	StatusModified,
	StatusDraft,
	StatusOldPublished,
	StatusDeleted,
}

// Active reports whether the status counts for the latest-active lookup.
func (s PublishingStatus) Active() bool {
	return s == StatusDraft || s == StatusModified || s == StatusPublished
}

// AggregateStatus folds per-language statuses into the version status.
// Published wins over Modified, Modified over Draft, Draft over OldPublished and
// OldPublished over Deleted. An empty input aggregates to Draft.
func AggregateStatus(statuses []PublishingStatus) PublishingStatus {
	if len(statuses) == 0 {
		return StatusDraft
	}
	best := len(PublishingStatuses)
	for _, s := range statuses {
		for i, p := range PublishingStatuses {
			if p == s && i < best {
				best = i
			}
		}
	}
	if best == len(PublishingStatuses) {
		return StatusDraft
	}
	return PublishingStatuses[best]
}

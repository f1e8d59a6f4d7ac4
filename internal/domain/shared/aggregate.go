package shared

// BaseAggregateRoot extends BaseEntity with a version counter used for
// optimistic locking. Repositories guard updates on the stored version and
// bump it on every successful write.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// IncrementVersion advances the version after a successful persisted update
// so the in-memory aggregate matches the stored row.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot returns a version-1 aggregate root with a fresh ID
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

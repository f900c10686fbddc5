package intake

import (
	"sync"
	"time"
)

// Step identifies which prompt is pending for a submitter.
type Step int

const (
	StepCompanyName Step = iota
	StepAddress
	StepPhone
	StepEquipmentModel
	StepIssueDescription
	StepMediaCollection
	StepDesiredDate
	StepConfirmation
)

// String returns a stable label for logging.
func (s Step) String() string {
	switch s {
	case StepCompanyName:
		return "company_name"
	case StepAddress:
		return "address"
	case StepPhone:
		return "phone"
	case StepEquipmentModel:
		return "equipment_model"
	case StepIssueDescription:
		return "issue_description"
	case StepMediaCollection:
		return "media_collection"
	case StepDesiredDate:
		return "desired_date"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// MediaRef is one attachment collected during the media step.
type MediaRef struct {
	FileID string
	Kind   string // "photo" or "video"
}

// Submission is the in-progress record being collected from one submitter.
// It is transient: it never outlives the conversation that builds it.
type Submission struct {
	ID             string
	ChatID         int64
	Handle         string
	Company        string
	Address        string
	Phone          string
	EquipmentModel string
	Issue          string
	DesiredDate    string
	Media          []MediaRef
	Step           Step
	StartedAt      time.Time

	// mediaNudged marks that the required-media re-prompt was already issued,
	// so the next text-only input overrides the policy.
	mediaNudged bool

	// confirmMsgID is the message carrying the confirm/restart keyboard.
	confirmMsgID int

	// Debounce state for the media step. timerGen invalidates a pending
	// timer: the fire callback compares its captured generation against the
	// current one under the chat lock, so replacing the timer is atomic with
	// respect to concurrent attachment arrival.
	timer    *time.Timer
	timerGen uint64
}

// Store maps submitter identity to its owned Submission. Each chat also gets
// a lock that serializes update handling for that submitter.
type Store struct {
	mu    sync.Mutex
	subs  map[int64]*Submission
	locks map[int64]*sync.Mutex
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		subs:  make(map[int64]*Submission),
		locks: make(map[int64]*sync.Mutex),
	}
}

// ChatLock returns the per-submitter lock, creating it on first use.
func (s *Store) ChatLock(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

// Get returns the in-progress submission for a chat, or nil.
func (s *Store) Get(chatID int64) *Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[chatID]
}

// Put replaces the submission for a chat.
func (s *Store) Put(sub *Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ChatID] = sub
}

// Delete removes the submission for a chat, if any, and reports whether one
// was present.
func (s *Store) Delete(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[chatID]
	delete(s.subs, chatID)
	return ok
}

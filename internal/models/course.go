package models

import (
	"errors"
	"time"
)

// Lifecycle states of a course.
const (
	StateNew              = "new"
	StatePrepared         = "prepared"
	StateLecturerApproved = "lecturerApproved"
	StateApproved         = "approved"
	StateInEvaluation     = "inEvaluation"
	StateEvaluated        = "evaluated"
	StateReviewed         = "reviewed"
	StatePublished        = "published"
)

// Student-facing states, a collapsed view of the lifecycle.
const (
	StudentStateUpcoming           = "upcoming"
	StudentStateInEvaluation       = "inEvaluation"
	StudentStateEvaluationFinished = "evaluationFinished"
	StudentStatePublished          = "published"
)

var studentStateNames = map[string]string{
	StateNew:              StudentStateUpcoming,
	StatePrepared:         StudentStateUpcoming,
	StateLecturerApproved: StudentStateUpcoming,
	StateApproved:         StudentStateUpcoming,
	StateInEvaluation:     StudentStateInEvaluation,
	StateEvaluated:        StudentStateEvaluationFinished,
	StateReviewed:         StudentStateEvaluationFinished,
	StatePublished:        StudentStatePublished,
}

// ErrNotArchiveable indicates an attempt to archive something that is not
// archiveable.
var ErrNotArchiveable = errors.New("not archiveable")

// ErrMissingGeneralContribution indicates a course without its course-wide
// contribution record, which must exist at all times after creation.
var ErrMissingGeneralContribution = errors.New("course has no general contribution")

// ErrResponsibleInvariant indicates a course that does not have exactly one
// responsible contribution.
var ErrResponsibleInvariant = errors.New("course must have exactly one responsible contribution")

// Course models a single course, e.g. the Math 101 course of 2002.
//
// ParticipantCount and VoterCount are nil while the course is live and hold
// frozen snapshots once the course has been archived. They are set and cleared
// strictly together.
type Course struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	SemesterID uint     `gorm:"not null;index" json:"semester_id"`
	Semester   Semester `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name   string `gorm:"size:1024;not null" json:"name"`
	Kind   string `gorm:"size:1024" json:"kind"`
	Degree string `gorm:"size:1024" json:"degree"`

	State string `gorm:"size:32;not null;default:new" json:"state"`

	// Default is true as that is the more restrictive option.
	IsGraded bool `gorm:"not null;default:true" json:"is_graded"`

	VoteStartDate *time.Time `json:"vote_start_date"`
	VoteEndDate   *time.Time `json:"vote_end_date"`

	Participants []UserProfile `gorm:"many2many:course_participants" json:"-"`
	Voters       []UserProfile `gorm:"many2many:course_voters" json:"-"`

	ParticipantCount *int `json:"participant_count,omitempty"`
	VoterCount       *int `json:"voter_count,omitempty"`

	Contributions []Contribution `gorm:"foreignKey:CourseID" json:"contributions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentState collapses the lifecycle state into the four states students see.
func (c Course) StudentState() string {
	return studentStateNames[c.State]
}

// NumParticipants returns the frozen participant count for archived courses
// and the live relationship count otherwise. Live counts require the
// Participants association to be loaded.
func (c Course) NumParticipants() int {
	if c.ParticipantCount != nil {
		return *c.ParticipantCount
	}
	return len(c.Participants)
}

// NumVoters returns the frozen voter count for archived courses and the live
// relationship count otherwise.
func (c Course) NumVoters() int {
	if c.VoterCount != nil {
		return *c.VoterCount
	}
	return len(c.Voters)
}

// IsArchived reports whether the participation counts have been frozen.
func (c Course) IsArchived() bool {
	return c.ParticipantCount != nil
}

// CheckArchivalConsistency verifies the frozen counts are either both set or
// both unset.
func (c Course) CheckArchivalConsistency() error {
	if (c.ParticipantCount == nil) != (c.VoterCount == nil) {
		return ErrMixedArchivalState
	}
	return nil
}

// IsArchiveable reports whether the course may be archived: never twice, and
// only from the states in which its statistics can no longer change meaning.
func (c Course) IsArchiveable() bool {
	return !c.IsArchived() && (c.State == StateNew || c.State == StatePublished)
}

// CanStaffEdit reports whether staff may still modify the course.
func (c Course) CanStaffEdit() bool {
	if c.IsArchived() {
		return false
	}
	switch c.State {
	case StateNew, StatePrepared, StateLecturerApproved, StateApproved, StateInEvaluation:
		return true
	}
	return false
}

// CanStaffDelete reports whether staff may delete the course. A course that
// has recorded voters is never deleted.
func (c Course) CanStaffDelete() bool {
	return c.CanStaffEdit() && c.NumVoters() == 0
}

// CanStaffApprove reports whether the course is still in an approvable state.
func (c Course) CanStaffApprove() bool {
	switch c.State {
	case StateNew, StatePrepared, StateLecturerApproved:
		return true
	}
	return false
}

// CanUserVote reports whether the user may cast a vote on this course today.
// Requires the Participants and Voters associations to be loaded.
func (c Course) CanUserVote(user UserProfile, today time.Time) bool {
	if c.State != StateInEvaluation || c.VoteEndDate == nil {
		return false
	}
	if truncateToDay(today).After(truncateToDay(*c.VoteEndDate)) {
		return false
	}
	return containsUser(c.Participants, user.ID) && !containsUser(c.Voters, user.ID)
}

// DaysLeftForEvaluation returns the number of whole days until the vote end
// date, negative once it has passed.
func (c Course) DaysLeftForEvaluation(today time.Time) int {
	if c.VoteEndDate == nil {
		return 0
	}
	return int(truncateToDay(*c.VoteEndDate).Sub(truncateToDay(today)).Hours() / 24)
}

// GeneralContribution returns the course-wide contribution without an
// individual contributor. Requires the Contributions association to be loaded.
func (c Course) GeneralContribution() (*Contribution, error) {
	for i := range c.Contributions {
		if c.Contributions[i].IsGeneral() {
			return &c.Contributions[i], nil
		}
	}
	return nil, ErrMissingGeneralContribution
}

// ResponsibleContribution returns the single contribution flagged responsible.
func (c Course) ResponsibleContribution() (*Contribution, error) {
	var found *Contribution
	for i := range c.Contributions {
		if c.Contributions[i].Responsible {
			if found != nil {
				return nil, ErrResponsibleInvariant
			}
			found = &c.Contributions[i]
		}
	}
	if found == nil {
		return nil, ErrResponsibleInvariant
	}
	return found, nil
}

// ResponsibleContributor returns the user behind the responsible contribution.
func (c Course) ResponsibleContributor() (*UserProfile, error) {
	contribution, err := c.ResponsibleContribution()
	if err != nil {
		return nil, err
	}
	if contribution.Contributor == nil {
		return nil, ErrResponsibleInvariant
	}
	return contribution.Contributor, nil
}

// HasEnoughQuestionnaires reports whether the general contribution exists and
// every contribution has at least one questionnaire assigned.
func (c Course) HasEnoughQuestionnaires() bool {
	if _, err := c.GeneralContribution(); err != nil {
		return false
	}
	for _, contribution := range c.Contributions {
		if len(contribution.Questionnaires) == 0 {
			return false
		}
	}
	return true
}

// DueParticipants returns the participants who have not voted yet.
func (c Course) DueParticipants() []UserProfile {
	voted := make(map[uint]struct{}, len(c.Voters))
	for _, voter := range c.Voters {
		voted[voter.ID] = struct{}{}
	}

	due := make([]UserProfile, 0, len(c.Participants))
	for _, participant := range c.Participants {
		if _, ok := voted[participant.ID]; !ok {
			due = append(due, participant)
		}
	}
	return due
}

// IsUserContributor reports whether the user holds any contribution on the course.
func (c Course) IsUserContributor(userID uint) bool {
	for _, contribution := range c.Contributions {
		if contribution.ContributorID != nil && *contribution.ContributorID == userID {
			return true
		}
	}
	return false
}

// IsUserEditor reports whether the user holds a contribution with edit rights.
func (c Course) IsUserEditor(userID uint) bool {
	for _, contribution := range c.Contributions {
		if contribution.CanEdit && contribution.ContributorID != nil && *contribution.ContributorID == userID {
			return true
		}
	}
	return false
}

// IsUserContributorOrDelegate reports whether the user contributes to the
// course directly or represents someone who does. Requires the contributors'
// Delegates association to be loaded.
func (c Course) IsUserContributorOrDelegate(user UserProfile) bool {
	for _, contribution := range c.Contributions {
		if contribution.ContributorID == nil {
			continue
		}
		if *contribution.ContributorID == user.ID {
			return true
		}
		if contribution.Contributor != nil && containsUser(contribution.Contributor.Delegates, user.ID) {
			return true
		}
	}
	return false
}

func containsUser(users []UserProfile, id uint) bool {
	for _, user := range users {
		if user.ID == id {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

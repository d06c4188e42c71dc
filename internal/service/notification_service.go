package service

import (
	"bytes"
	"context"
	"errors"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/observability"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrTemplateNotFound indicates the named email template does not exist.
var ErrTemplateNotFound = errors.New("email template not found")

// ErrUnknownRecipientGroup indicates a recipient group outside the known set.
var ErrUnknownRecipientGroup = errors.New("unknown recipient group")

// Recipient groups. Contributors and editors are alternatives, as are all
// and due participants: the broader group wins when both are requested.
const (
	GroupResponsible     = "responsible"
	GroupContributors    = "contributors"
	GroupEditors         = "editors"
	GroupAllParticipants = "all_participants"
	GroupDueParticipants = "due_participants"
)

var knownGroups = map[string]struct{}{
	GroupResponsible:     {},
	GroupContributors:    {},
	GroupEditors:         {},
	GroupAllParticipants: {},
	GroupDueParticipants: {},
}

// Recipient pairs a user with the courses one message should cover.
type Recipient struct {
	User    models.UserProfile
	Courses []models.Course
}

// NotificationService aggregates notification recipients across courses and
// hands one rendered message per recipient to the mail delivery provider.
type NotificationService interface {
	ResolveRecipients(ctx context.Context, courseIDs []uint, groups []string) ([]Recipient, error)
	ResolveCcAddresses(ctx context.Context, userID uint) ([]string, error)
	SendToUsersInCourses(ctx context.Context, templateName string, courseIDs []uint, groups []string) (dto.NotificationDispatchResponse, error)
	SendReminder(ctx context.Context, userID uint, daysLeft int, dueCourseIDs []uint) error
}

type notificationService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	templates repository.TemplateRepository
	delivery  MailDelivery
	replyTo   string
	managers  []string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewNotificationService constructs the notification service. The managers
// list is blind-copied on every message.
func NewNotificationService(courses repository.CourseRepository, users repository.UserRepository, templates repository.TemplateRepository, delivery MailDelivery, replyTo string, managers []string, logger zerolog.Logger) NotificationService {
	return &notificationService{
		courses:   courses,
		users:     users,
		templates: templates,
		delivery:  delivery,
		replyTo:   replyTo,
		managers:  managers,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		now:       time.Now,
	}
}

// recipientsForCourse lists the users a notification class addresses on one
// course, in a stable order: responsible first, then contributors or editors,
// then participants.
func recipientsForCourse(course models.Course, groups map[string]struct{}) ([]models.UserProfile, error) {
	var recipients []models.UserProfile

	if _, ok := groups[GroupResponsible]; ok {
		responsible, err := course.ResponsibleContributor()
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, *responsible)
	}

	if _, ok := groups[GroupContributors]; ok {
		for _, contribution := range course.Contributions {
			if !contribution.IsGeneral() && contribution.Contributor != nil {
				recipients = append(recipients, *contribution.Contributor)
			}
		}
	} else if _, ok := groups[GroupEditors]; ok {
		for _, contribution := range course.Contributions {
			if !contribution.IsGeneral() && contribution.CanEdit && contribution.Contributor != nil {
				recipients = append(recipients, *contribution.Contributor)
			}
		}
	}

	if _, ok := groups[GroupAllParticipants]; ok {
		recipients = append(recipients, course.Participants...)
	} else if _, ok := groups[GroupDueParticipants]; ok {
		recipients = append(recipients, course.DueParticipants()...)
	}

	return recipients, nil
}

// ResolveRecipients folds the per-course recipient lists into one entry per
// recipient carrying all their courses. A user who is a cc user or delegate
// of a course's responsible contributor is not charged that course; they are
// presumed informed through that channel already. Users without an email
// address are dropped entirely.
func (s *notificationService) ResolveRecipients(ctx context.Context, courseIDs []uint, groups []string) ([]Recipient, error) {
	groupSet := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		if _, ok := knownGroups[group]; !ok {
			return nil, ErrUnknownRecipientGroup
		}
		groupSet[group] = struct{}{}
	}

	courses, err := s.courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	var order []uint
	byUser := make(map[uint]*Recipient)

	for _, course := range courses {
		responsible, err := course.ResponsibleContributor()
		if err != nil {
			return nil, err
		}

		candidates, err := recipientsForCourse(course, groupSet)
		if err != nil {
			return nil, err
		}

		seen := make(map[uint]struct{}, len(candidates))
		for _, candidate := range candidates {
			if _, duplicate := seen[candidate.ID]; duplicate {
				continue
			}
			seen[candidate.ID] = struct{}{}

			if !candidate.HasEmail() {
				continue
			}
			if userInList(responsible.CCUsers, candidate.ID) || userInList(responsible.Delegates, candidate.ID) {
				continue
			}

			entry, ok := byUser[candidate.ID]
			if !ok {
				entry = &Recipient{User: candidate}
				byUser[candidate.ID] = entry
				order = append(order, candidate.ID)
			}
			entry.Courses = append(entry.Courses, course)
		}
	}

	recipients := make([]Recipient, 0, len(order))
	for _, id := range order {
		recipients = append(recipients, *byUser[id])
	}
	return recipients, nil
}

// ResolveCcAddresses returns the deduplicated email addresses of the user's
// delegates and cc users, empty addresses dropped.
func (s *notificationService) ResolveCcAddresses(ctx context.Context, userID uint) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return ccAddresses(user), nil
}

func userInList(users []models.UserProfile, id uint) bool {
	for _, user := range users {
		if user.ID == id {
			return true
		}
	}
	return false
}

func ccAddresses(user models.UserProfile) []string {
	var addresses []string
	seen := make(map[string]struct{})
	for _, related := range append(append([]models.UserProfile{}, user.Delegates...), user.CCUsers...) {
		if !related.HasEmail() {
			continue
		}
		if _, duplicate := seen[related.Email]; duplicate {
			continue
		}
		seen[related.Email] = struct{}{}
		addresses = append(addresses, related.Email)
	}
	return addresses
}

func (s *notificationService) SendToUsersInCourses(ctx context.Context, templateName string, courseIDs []uint, groups []string) (dto.NotificationDispatchResponse, error) {
	tracer := otel.Tracer("github.com/phSch08/EvaP/internal/service/notification")
	ctx, span := tracer.Start(ctx, "notifications.send_to_courses")
	span.SetAttributes(
		attribute.String("notification.template", templateName),
		attribute.Int("notification.courses", len(courseIDs)),
	)
	defer span.End()

	emailTemplate, err := s.templates.GetByName(ctx, templateName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "template_not_found")
			return dto.NotificationDispatchResponse{}, ErrTemplateNotFound
		}
		return dto.NotificationDispatchResponse{}, err
	}

	recipients, err := s.ResolveRecipients(ctx, courseIDs, groups)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationDispatchResponse{}, err
	}

	response := dto.NotificationDispatchResponse{Template: templateName}
	for _, recipient := range recipients {
		if err := s.sendToUser(ctx, emailTemplate, recipient.User, recipient.Courses, true); err != nil {
			s.logger.Error().Err(err).
				Str("recipient", maskEmailAddress(recipient.User.Email)).
				Msg("failed to deliver notification")
			response.Failed++
			continue
		}
		response.Delivered++
	}

	observability.EmailsSentTotal().WithLabelValues(templateName).Add(float64(response.Delivered))
	return response, nil
}

// sendToUser renders one message covering all the user's courses. A user
// without an email address is a no-op, not an error.
func (s *notificationService) sendToUser(ctx context.Context, emailTemplate models.EmailTemplate, user models.UserProfile, courses []models.Course, cc bool) error {
	if !user.HasEmail() {
		return nil
	}

	data := map[string]interface{}{
		"User":    user,
		"Courses": courses,
	}

	subject, err := renderTemplate(emailTemplate.Subject, data)
	if err != nil {
		return err
	}
	body, err := renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return err
	}

	mail := Email{
		To:      []string{user.Email},
		BCC:     s.managers,
		ReplyTo: s.replyTo,
		Subject: subject,
		Body:    body,
	}
	if cc {
		mail.CC = ccAddresses(user)
	}

	return s.delivery.Deliver(ctx, mail)
}

// SendReminder mails one user about their courses still awaiting a vote.
// No cc is applied; the managers stay blind-copied.
func (s *notificationService) SendReminder(ctx context.Context, userID uint, daysLeft int, dueCourseIDs []uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.HasEmail() {
		return nil
	}

	emailTemplate, err := s.templates.GetByName(ctx, models.TemplateStudentReminder)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	dueCourses, err := s.courses.ListByIDs(ctx, dueCourseIDs)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"User":              user,
		"DueInNumberOfDays": daysLeft,
		"DueCourses":        dueCourses,
	}

	subject, err := renderTemplate(emailTemplate.Subject, data)
	if err != nil {
		return err
	}
	body, err := renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return err
	}

	mail := Email{
		To:      []string{user.Email},
		BCC:     s.managers,
		ReplyTo: s.replyTo,
		Subject: subject,
		Body:    body,
	}

	if err := s.delivery.Deliver(ctx, mail); err != nil {
		return err
	}

	observability.EmailsSentTotal().WithLabelValues(models.TemplateStudentReminder).Inc()
	return nil
}

func renderTemplate(text string, data map[string]interface{}) (string, error) {
	parsed, err := template.New("mail").Parse(text)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	if err := parsed.Execute(&buffer, data); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

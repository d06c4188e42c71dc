package service

import (
	"context"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intPtr(v int) *int {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}

type fakeCourseRepo struct {
	courses   map[uint]*models.Course
	unchecked map[uint]int64
	entries   []models.ActivityLog
}

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{
		courses:   make(map[uint]*models.Course),
		unchecked: make(map[uint]int64),
	}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return *course, nil
}

func (f *fakeCourseRepo) ListByIDs(_ context.Context, ids []uint) ([]models.Course, error) {
	sorted := append([]uint{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var courses []models.Course
	for _, id := range sorted {
		if course, ok := f.courses[id]; ok {
			courses = append(courses, *course)
		}
	}
	return courses, nil
}

func (f *fakeCourseRepo) ListBySemester(_ context.Context, semesterID uint) ([]models.Course, error) {
	var ids []uint
	for id, course := range f.courses {
		if course.SemesterID == semesterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		courses = append(courses, *f.courses[id])
	}
	return courses, nil
}

func (f *fakeCourseRepo) ListByState(_ context.Context, state string) ([]models.Course, error) {
	var courses []models.Course
	for _, course := range f.courses {
		if course.State == state {
			courses = append(courses, *course)
		}
	}
	return courses, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseRepo) TransitionState(_ context.Context, courseID uint, fromStates []string, toState string, requireFullyChecked bool, entry *models.ActivityLog) error {
	course, ok := f.courses[courseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	matches := false
	for _, state := range fromStates {
		if course.State == state {
			matches = true
			break
		}
	}
	if !matches {
		return repository.ErrStateConflict
	}

	if requireFullyChecked && f.unchecked[courseID] > 0 {
		return repository.ErrUncheckedAnswers
	}

	course.State = toState
	if entry != nil {
		f.entries = append(f.entries, *entry)
	}
	return nil
}

type fakeUserRepo struct {
	users    map[uint]*models.UserProfile
	usedKeys map[int]bool
	updated  []models.UserProfile
}

func newFakeUserRepo(users ...*models.UserProfile) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:    make(map[uint]*models.UserProfile),
		usedKeys: make(map[int]bool),
	}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (models.UserProfile, error) {
	user, ok := f.users[id]
	if !ok {
		return models.UserProfile{}, gorm.ErrRecordNotFound
	}
	return *user, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (models.UserProfile, error) {
	for _, user := range f.users {
		if user.Username == username {
			return *user, nil
		}
	}
	return models.UserProfile{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByLoginKey(_ context.Context, key int) (models.UserProfile, error) {
	for _, user := range f.users {
		if user.LoginKey != nil && *user.LoginKey == key {
			return *user, nil
		}
	}
	return models.UserProfile{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) LoginKeyExists(_ context.Context, key int) (bool, error) {
	if f.usedKeys[key] {
		return true, nil
	}
	for _, user := range f.users {
		if user.LoginKey != nil && *user.LoginKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.UserProfile) error {
	stored := *user
	f.users[user.ID] = &stored
	f.updated = append(f.updated, stored)
	return nil
}

type fakeAnswerRepo struct {
	answers  map[uint]*models.TextAnswer
	courseOf map[uint]uint
	likert   map[uint][]models.LikertAnswer
	grade    map[uint][]models.GradeAnswer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{
		answers:  make(map[uint]*models.TextAnswer),
		courseOf: make(map[uint]uint),
		likert:   make(map[uint][]models.LikertAnswer),
		grade:    make(map[uint][]models.GradeAnswer),
	}
}

func (f *fakeAnswerRepo) add(courseID uint, answer models.TextAnswer) {
	stored := answer
	f.answers[answer.ID] = &stored
	f.courseOf[answer.ID] = courseID
}

func (f *fakeAnswerRepo) GetTextAnswer(_ context.Context, id uint) (models.TextAnswer, error) {
	answer, ok := f.answers[id]
	if !ok {
		return models.TextAnswer{}, gorm.ErrRecordNotFound
	}
	return *answer, nil
}

func (f *fakeAnswerRepo) UpdateTextAnswer(_ context.Context, answer *models.TextAnswer) error {
	stored := *answer
	f.answers[answer.ID] = &stored
	return nil
}

func (f *fakeAnswerRepo) ListTextAnswers(_ context.Context, courseID uint) ([]models.TextAnswer, error) {
	return f.list(courseID, false), nil
}

func (f *fakeAnswerRepo) ListOpenTextAnswers(_ context.Context, courseID uint) ([]models.TextAnswer, error) {
	return f.list(courseID, true), nil
}

func (f *fakeAnswerRepo) list(courseID uint, onlyOpen bool) []models.TextAnswer {
	var ids []uint
	for id, owner := range f.courseOf {
		if owner != courseID {
			continue
		}
		if onlyOpen && f.answers[id].Checked {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	answers := make([]models.TextAnswer, 0, len(ids))
	for _, id := range ids {
		answers = append(answers, *f.answers[id])
	}
	return answers
}

func (f *fakeAnswerRepo) CountUnchecked(_ context.Context, courseID uint, excludeIDs []uint) (int64, error) {
	excluded := make(map[uint]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	var count int64
	for id, owner := range f.courseOf {
		if owner != courseID {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		if !f.answers[id].Checked {
			count++
		}
	}
	return count, nil
}

func (f *fakeAnswerRepo) ListLikertAnswers(_ context.Context, courseID uint) ([]models.LikertAnswer, error) {
	return f.likert[courseID], nil
}

func (f *fakeAnswerRepo) ListGradeAnswers(_ context.Context, courseID uint) ([]models.GradeAnswer, error) {
	return f.grade[courseID], nil
}

type fakeSemesterRepo struct {
	semesters       map[uint]*models.Semester
	archiveErr      error
	archivedBatches []uint
	archivedCourses []uint
}

func newFakeSemesterRepo(semesters ...*models.Semester) *fakeSemesterRepo {
	repo := &fakeSemesterRepo{semesters: make(map[uint]*models.Semester)}
	for _, semester := range semesters {
		repo.semesters[semester.ID] = semester
	}
	return repo
}

func (f *fakeSemesterRepo) GetByID(_ context.Context, id uint) (models.Semester, error) {
	semester, ok := f.semesters[id]
	if !ok {
		return models.Semester{}, gorm.ErrRecordNotFound
	}
	return *semester, nil
}

func (f *fakeSemesterRepo) Latest(_ context.Context) (models.Semester, error) {
	var latest *models.Semester
	for _, semester := range f.semesters {
		if latest == nil || semester.ID > latest.ID {
			latest = semester
		}
	}
	if latest == nil {
		return models.Semester{}, gorm.ErrRecordNotFound
	}
	return *latest, nil
}

func (f *fakeSemesterRepo) ListWithPublishedCourses(_ context.Context) ([]models.Semester, error) {
	return nil, nil
}

func (f *fakeSemesterRepo) Create(_ context.Context, semester *models.Semester) error {
	f.semesters[semester.ID] = semester
	return nil
}

func (f *fakeSemesterRepo) ArchiveCourses(_ context.Context, semesterID uint) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	f.archivedBatches = append(f.archivedBatches, semesterID)
	return nil
}

func (f *fakeSemesterRepo) ArchiveCourse(_ context.Context, courseID uint) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	f.archivedCourses = append(f.archivedCourses, courseID)
	return nil
}

type fakeTemplateRepo struct {
	templates map[string]models.EmailTemplate
}

func newFakeTemplateRepo(templates ...models.EmailTemplate) *fakeTemplateRepo {
	repo := &fakeTemplateRepo{templates: make(map[string]models.EmailTemplate)}
	for _, template := range templates {
		repo.templates[template.Name] = template
	}
	return repo
}

func (f *fakeTemplateRepo) GetByName(_ context.Context, name string) (models.EmailTemplate, error) {
	template, ok := f.templates[name]
	if !ok {
		return models.EmailTemplate{}, gorm.ErrRecordNotFound
	}
	return template, nil
}

func (f *fakeTemplateRepo) Save(_ context.Context, template *models.EmailTemplate) error {
	f.templates[template.Name] = *template
	return nil
}

type fakeActivityRepo struct {
	entries []models.ActivityLog
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) List(_ context.Context, _ repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

type captureDelivery struct {
	mails   []Email
	failFor map[string]error
}

func (c *captureDelivery) Deliver(_ context.Context, mail Email) error {
	if len(mail.To) == 1 {
		if err, ok := c.failFor[mail.To[0]]; ok {
			return err
		}
	}
	c.mails = append(c.mails, mail)
	return nil
}

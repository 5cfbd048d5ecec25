package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

type HabitInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Frequency   *string `json:"frequency" validate:"omitempty,oneof=daily weekly"`
}

// TrackResult reports the state of a habit for a day after a toggle.
type TrackResult struct {
	HabitID string `json:"habitId"`
	Date    string `json:"date"`
	Done    bool   `json:"done"`
	Streak  int    `json:"streak"`
}

type HabitService struct {
	repo        repository.HabitRepository
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewHabitService(repo repository.HabitRepository, profileRepo repository.ProfileRepository) *HabitService {
	return &HabitService{
		repo:        repo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

func (s *HabitService) Create(userID string, in HabitInput) (*model.Habit, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, validation.NewError("title is required")
	}
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	habit := &model.Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       *in.Title,
		Description: valueOr(in.Description, ""),
		Frequency:   valueOr(in.Frequency, model.HabitFrequencyDaily),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *HabitService) ByID(userID, habitID string) (*model.Habit, error) {
	habit, err := s.repo.ByID(userID, habitID)
	if err != nil {
		return nil, err
	}

	err = s.fillProgress(habit, s.Today(userID))
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// Habits lists the user's habits with their current streak and today's state.
func (s *HabitService) Habits(userID string) ([]*model.Habit, error) {
	habits, err := s.repo.Habits(userID)
	if err != nil {
		return nil, err
	}

	today := s.Today(userID)
	for _, h := range habits {
		err = s.fillProgress(h, today)
		if err != nil {
			return nil, err
		}
	}

	return habits, nil
}

// Trackers returns tracker rows of all the user's habits in [from, to].
func (s *HabitService) Trackers(userID, from, to string) ([]*model.HabitTracker, error) {
	if !validDate(from) || !validDate(to) {
		return nil, ErrInvalidDate
	}
	return s.repo.Entries(userID, from, to)
}

func (s *HabitService) Update(userID, habitID string, in HabitInput) (*model.Habit, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	habit, err := s.repo.ByID(userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Title = valueOr(in.Title, habit.Title)
	if in.Description != nil {
		habit.Description = *in.Description
	}
	habit.Frequency = valueOr(in.Frequency, habit.Frequency)

	err = s.repo.Update(habit)
	if err != nil {
		return nil, err
	}

	return s.ByID(userID, habitID)
}

func (s *HabitService) Delete(userID, habitID string) error {
	return s.repo.Delete(userID, habitID)
}

// Track toggles completion of a habit on date. An empty date means today in
// the user's timezone.
func (s *HabitService) Track(userID, habitID, date string) (*TrackResult, error) {
	habit, err := s.repo.ByID(userID, habitID)
	if err != nil {
		return nil, err
	}

	today := s.Today(userID)
	if date == "" {
		date = today
	}
	if !validDate(date) {
		return nil, ErrInvalidDate
	}

	res := &TrackResult{HabitID: habitID, Date: date}

	_, err = s.repo.Entry(habitID, date)
	switch {
	case err == nil:
		err = s.repo.Untrack(habitID, date)
		if err != nil {
			return nil, err
		}
		habitTracksTotal.WithLabelValues("untrack").Inc()
	case errors.Is(err, repository.ErrTrackerNotFound):
		err = s.repo.Track(&model.HabitTracker{
			ID:        uuid.New().String(),
			HabitID:   habitID,
			UserID:    userID,
			Date:      date,
			Status:    model.TrackerStatusCompleted,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return nil, err
		}
		res.Done = true
		habitTracksTotal.WithLabelValues("track").Inc()
	default:
		return nil, err
	}

	err = s.fillProgress(habit, today)
	if err != nil {
		return nil, err
	}
	res.Streak = habit.Streak
	return res, nil
}

// Today returns the current date in the user's profile timezone.
func (s *HabitService) Today(userID string) string {
	loc := time.UTC
	profile, err := s.profileRepo.ByUserID(userID)
	if err == nil && profile.Timezone != "" {
		l, err := time.LoadLocation(profile.Timezone)
		if err != nil {
			slog.Warn("unknown profile timezone, using UTC", "user_id", userID, "timezone", profile.Timezone)
		} else {
			loc = l
		}
	}
	return s.now().In(loc).Format(model.DateLayout)
}

func (s *HabitService) fillProgress(habit *model.Habit, today string) error {
	dates, err := s.repo.CompletedDates(habit.ID, today)
	if err != nil {
		return err
	}

	habit.DoneToday = len(dates) > 0 && dates[0] == today
	habit.Streak = Streak(dates, today, habit.Frequency)
	return nil
}

// Streak counts consecutive completed periods ending at today's period or
// the one before it. dates are completed days, newest first. Daily habits
// count days, weekly habits count ISO weeks with at least one completion.
func Streak(dates []string, today, frequency string) int {
	t, err := time.Parse(model.DateLayout, today)
	if err != nil || len(dates) == 0 {
		return 0
	}

	period := func(d time.Time) time.Time { return d }
	step := func(d time.Time) time.Time { return d.AddDate(0, 0, -1) }
	if frequency == model.HabitFrequencyWeekly {
		period = startOfWeek
		step = func(d time.Time) time.Time { return d.AddDate(0, 0, -7) }
	}

	expect := period(t)
	first, err := time.Parse(model.DateLayout, dates[0])
	if err != nil {
		return 0
	}
	if period(first).Before(expect) {
		// Today's period not done yet, the streak may still end yesterday
		expect = step(expect)
	}

	streak := 0
	for _, ds := range dates {
		d, err := time.Parse(model.DateLayout, ds)
		if err != nil {
			continue
		}
		p := period(d)
		switch {
		case p.Equal(expect):
			streak++
			expect = step(expect)
		case p.After(expect):
			// Same period counted already (weekly)
		default:
			return streak
		}
	}
	return streak
}

func startOfWeek(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

func validDate(date string) bool {
	_, err := time.Parse(model.DateLayout, date)
	return err == nil
}

package mealplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/storage"
)

// Meal type slots of a day, in display order.
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// MealTypes lists the four fixed slots in display order.
var MealTypes = []string{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

const dateLayout = "2006-01-02"

// MealsByType buckets a day's meals into the four fixed slots. Each bucket
// preserves the relative order of the source collection.
type MealsByType struct {
	Breakfast []storage.PlannedMeal `json:"breakfast"`
	Lunch     []storage.PlannedMeal `json:"lunch"`
	Dinner    []storage.PlannedMeal `json:"dinner"`
	Snack     []storage.PlannedMeal `json:"snack"`
}

// DayPlan is the derived view of one calendar day.
type DayPlan struct {
	Date          string      `json:"date"`
	Day           string      `json:"day"`
	Meals         MealsByType `json:"meals"`
	TotalCalories int         `json:"total_calories"`
	IsToday       bool        `json:"is_today"`
}

// MealTypeCounts counts meals per slot over a week.
type MealTypeCounts struct {
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Dinner    int `json:"dinner"`
	Snack     int `json:"snack"`
}

// WeekStats summarizes exactly seven DayPlan entries.
type WeekStats struct {
	TotalMeals            int            `json:"total_meals"`
	CompletedMeals        int            `json:"completed_meals"`
	TotalCalories         int            `json:"total_calories"`
	AverageCaloriesPerDay int            `json:"average_calories_per_day"`
	MealTypeDistribution  MealTypeCounts `json:"meal_type_distribution"`
}

// WeekRange holds the bounds of one Monday-to-Sunday week and the seven
// concrete dates in order.
type WeekRange struct {
	Start time.Time
	End   time.Time
	Days  [7]time.Time
}

// RecipeRef is the denormalized recipe snapshot copied into a planned meal.
type RecipeRef struct {
	ID    string
	Name  string
	Image string
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// WeekdayName returns the lowercase English weekday name of a date.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// weekdayNameOf derives the weekday name from a date string. Malformed input
// yields an empty name rather than an error; every caller is total.
func weekdayNameOf(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return WeekdayName(t)
}

// WeekBounds computes the Monday-to-Sunday week containing the reference
// date. A Sunday belongs to the week that started the previous Monday:
// weekday index 0 (Sunday) maps to offset -6, index 1-6 to offset 1-index.
// The rule is intentionally not a generic start-of-ISO-week computation; it
// mirrors how stored plan dates were produced.
func WeekBounds(reference time.Time) WeekRange {
	// Rebuild the date at midnight in the reference's own location.
	// Truncate would snap to UTC midnight and shift the weekday for
	// early-morning references on non-UTC clocks.
	y, m, d := reference.Date()
	reference = time.Date(y, m, d, 0, 0, 0, 0, reference.Location())

	offset := 1 - int(reference.Weekday())
	if reference.Weekday() == time.Sunday {
		offset = -6
	}
	monday := reference.AddDate(0, 0, offset)

	var r WeekRange
	r.Start = monday
	r.End = monday.AddDate(0, 0, 6)
	for i := 0; i < 7; i++ {
		r.Days[i] = monday.AddDate(0, 0, i)
	}
	return r
}

// BuildDayPlan derives one day's view from the full meal collection. Meals
// are matched by exact date-string equality and partitioned into the four
// slots preserving source order. IsToday is an exact same-day string match
// against now.
func BuildDayPlan(date time.Time, meals []storage.PlannedMeal, now time.Time) DayPlan {
	dateStr := FormatDate(date)

	plan := DayPlan{
		Date:    dateStr,
		Day:     WeekdayName(date),
		IsToday: dateStr == FormatDate(now),
		Meals: MealsByType{
			Breakfast: []storage.PlannedMeal{},
			Lunch:     []storage.PlannedMeal{},
			Dinner:    []storage.PlannedMeal{},
			Snack:     []storage.PlannedMeal{},
		},
	}

	for _, meal := range meals {
		if meal.Date != dateStr {
			continue
		}
		switch meal.MealType {
		case MealTypeBreakfast:
			plan.Meals.Breakfast = append(plan.Meals.Breakfast, meal)
		case MealTypeLunch:
			plan.Meals.Lunch = append(plan.Meals.Lunch, meal)
		case MealTypeDinner:
			plan.Meals.Dinner = append(plan.Meals.Dinner, meal)
		case MealTypeSnack:
			plan.Meals.Snack = append(plan.Meals.Snack, meal)
		default:
			continue
		}
		plan.TotalCalories += meal.Calories
	}

	return plan
}

// BuildWeekPlan maps BuildDayPlan over the seven days of the week containing
// the reference date. Meals dated outside the week are excluded silently.
func BuildWeekPlan(reference time.Time, meals []storage.PlannedMeal, now time.Time) []DayPlan {
	bounds := WeekBounds(reference)

	days := make([]DayPlan, 0, 7)
	for _, day := range bounds.Days {
		days = append(days, BuildDayPlan(day, meals, now))
	}
	return days
}

// ComputeWeekStats flattens all buckets of all seven days and computes the
// week aggregates. AverageCaloriesPerDay always divides by the constant 7,
// regardless of how many days actually contain meals.
func ComputeWeekStats(days []DayPlan) WeekStats {
	var stats WeekStats

	count := func(bucket []storage.PlannedMeal) {
		for _, meal := range bucket {
			stats.TotalMeals++
			if meal.IsCompleted {
				stats.CompletedMeals++
			}
			stats.TotalCalories += meal.Calories
			switch meal.MealType {
			case MealTypeBreakfast:
				stats.MealTypeDistribution.Breakfast++
			case MealTypeLunch:
				stats.MealTypeDistribution.Lunch++
			case MealTypeDinner:
				stats.MealTypeDistribution.Dinner++
			case MealTypeSnack:
				stats.MealTypeDistribution.Snack++
			}
		}
	}

	for _, day := range days {
		count(day.Meals.Breakfast)
		count(day.Meals.Lunch)
		count(day.Meals.Dinner)
		count(day.Meals.Snack)
	}

	stats.AverageCaloriesPerDay = stats.TotalCalories / 7
	return stats
}

// AddMeal appends a new planned meal with a fresh id. Day is derived from
// date at construction time; the recipe reference is copied by value.
func AddMeal(meals []storage.PlannedMeal, ownerUserID string, recipe RecipeRef, date, mealType string, servings, calories int, cookTime, notes string, now time.Time) []storage.PlannedMeal {
	meal := storage.PlannedMeal{
		ID:          uuid.New().String(),
		OwnerUserID: ownerUserID,
		RecipeID:    recipe.ID,
		RecipeName:  recipe.Name,
		RecipeImage: recipe.Image,
		MealType:    mealType,
		Day:         weekdayNameOf(date),
		Date:        date,
		Servings:    servings,
		Calories:    calories,
		CookTime:    cookTime,
		Notes:       notes,
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	out := make([]storage.PlannedMeal, 0, len(meals)+1)
	out = append(out, meals...)
	return append(out, meal)
}

// RemoveMeal drops the meal with the given id. Unknown ids are a no-op.
func RemoveMeal(meals []storage.PlannedMeal, mealID string) []storage.PlannedMeal {
	out := make([]storage.PlannedMeal, 0, len(meals))
	for _, meal := range meals {
		if meal.ID == mealID {
			continue
		}
		out = append(out, meal)
	}
	return out
}

// ToggleCompleted flips the completion flag of the matching meal only.
func ToggleCompleted(meals []storage.PlannedMeal, mealID string, now time.Time) []storage.PlannedMeal {
	out := make([]storage.PlannedMeal, len(meals))
	for i, meal := range meals {
		if meal.ID == mealID {
			meal.IsCompleted = !meal.IsCompleted
			meal.UpdatedAt = now
		}
		out[i] = meal
	}
	return out
}

// UpdateServings sets the serving count of the matching meal.
func UpdateServings(meals []storage.PlannedMeal, mealID string, servings int, now time.Time) []storage.PlannedMeal {
	out := make([]storage.PlannedMeal, len(meals))
	for i, meal := range meals {
		if meal.ID == mealID {
			meal.Servings = servings
			meal.UpdatedAt = now
		}
		out[i] = meal
	}
	return out
}

// MoveMeal reassigns the matching meal to a new date and slot. Date, meal
// type and the derived day change together as one atomic update.
func MoveMeal(meals []storage.PlannedMeal, mealID, newDate, newMealType string, now time.Time) []storage.PlannedMeal {
	out := make([]storage.PlannedMeal, len(meals))
	for i, meal := range meals {
		if meal.ID == mealID {
			meal.Date = newDate
			meal.Day = weekdayNameOf(newDate)
			meal.MealType = newMealType
			meal.UpdatedAt = now
		}
		out[i] = meal
	}
	return out
}

// NextWeek advances a date by seven days. No bounds checking: navigation
// arbitrarily far into the past or future is allowed.
func NextWeek(date time.Time) time.Time {
	return date.AddDate(0, 0, 7)
}

// PreviousWeek moves a date back by seven days.
func PreviousWeek(date time.Time) time.Time {
	return date.AddDate(0, 0, -7)
}

// WeekLabel renders the human-readable range of the week starting at
// weekStart. Within one month: "2-8 January 2006". Across a month boundary:
// "29 Jan - 4 Feb 2006". The year is always taken from weekStart.
func WeekLabel(weekStart time.Time) string {
	weekEnd := weekStart.AddDate(0, 0, 6)

	if weekStart.Month() == weekEnd.Month() {
		return fmt.Sprintf("%d-%d %s %d", weekStart.Day(), weekEnd.Day(), weekStart.Month().String(), weekStart.Year())
	}
	return fmt.Sprintf("%d %s - %d %s %d", weekStart.Day(), weekStart.Format("Jan"), weekEnd.Day(), weekEnd.Format("Jan"), weekStart.Year())
}

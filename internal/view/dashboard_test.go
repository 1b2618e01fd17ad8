package view

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
)

func foodLog(id, date, meal, food string, cal, protein float64) model.FoodLogEntry {
	return model.FoodLogEntry{
		ID:       model.LogID(id),
		LogDate:  date,
		Food:     food,
		MealType: meal,
		Nutrients: map[model.Nutrient]model.OptFloat{
			model.NutrientCalories: model.Float(cal),
			model.NutrientProtein:  model.Float(protein),
		},
	}
}

func profileWithBMI(bmi float64) *model.UserProfile {
	p := model.DefaultUserProfile()
	p.BMI = &bmi
	return &p
}

func TestDashboard_FullPage(t *testing.T) {
	v, gw, _ := newTestViews(t)
	gw.getUserDetailsFn = func(_ context.Context, token string) (*model.UserProfile, error) {
		if token != "tok-alice" {
			t.Errorf("token = %q", token)
		}
		return profileWithBMI(26.3), nil
	}
	gw.latestFoodLogsFn = func(_ context.Context, _ string, days int) ([]model.FoodLogEntry, error) {
		if days != 7 {
			t.Errorf("days = %d, want 7", days)
		}
		return []model.FoodLogEntry{
			foodLog("1", "2024-06-01", "breakfast", "Oats", 300, 10),
			foodLog("2", "2024-06-02", "lunch", "Rice", 700, 20),
		}, nil
	}
	gw.predictDietFn = func(context.Context, string, model.UserProfile) (string, error) {
		return "eat more **vegetables**<script>alert(1)</script>", nil
	}

	res := v.Dashboard(context.Background(), authenticatedStore())

	if res.Status != http.StatusOK || res.Template != TmplDashboard {
		t.Fatalf("unexpected result: %+v", res)
	}
	data := res.Data.(*DashboardData)
	if data.BMI != "26.3" || data.BMICategory != "Overweight" || data.BMIColor != "#FF9800" {
		t.Errorf("BMI = %q %q %q", data.BMI, data.BMICategory, data.BMIColor)
	}
	if data.AvgCalories != "500" {
		t.Errorf("AvgCalories = %q, want 500", data.AvgCalories)
	}
	if len(data.Charts) != 3 {
		t.Fatalf("len(Charts) = %d, want 3", len(data.Charts))
	}
	if !strings.Contains(data.Charts[0].Spec, `"type":"line"`) {
		t.Errorf("first chart = %s", data.Charts[0].Spec)
	}
	rec := string(data.Recommendation)
	if !strings.Contains(rec, "<strong>vegetables</strong>") || !strings.Contains(rec, "✅ Eat more") {
		t.Errorf("Recommendation = %q", rec)
	}
	if strings.Contains(rec, "<script") {
		t.Errorf("Recommendation not sanitized: %q", rec)
	}
}

func TestDashboard_ProfileMissingStops(t *testing.T) {
	v, gw, _ := newTestViews(t)
	gw.getUserDetailsFn = func(context.Context, string) (*model.UserProfile, error) {
		return nil, rejected(backend.OpGetUserDetails, 404, "")
	}

	res := v.Dashboard(context.Background(), authenticatedStore())

	data := res.Data.(*DashboardData)
	if !hasNotice(data.Base, LevelInfo, model.MsgProfileGuidance) || data.HasProfile {
		t.Errorf("data = %+v", data)
	}
	if gw.callCount() != 1 {
		t.Errorf("calls = %v, want profile only", gw.calls)
	}
}

func TestDashboard_LogsUnavailableOrEmptyStops(t *testing.T) {
	tests := []struct {
		name string
		logs []model.FoodLogEntry
		err  error
		want string
	}{
		{"rejected", nil, rejected(backend.OpLatestFoodLogs, 404, ""), model.MsgNoFoodLogsYet},
		{"empty", []model.FoodLogEntry{}, nil, model.MsgFoodLogsEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, gw, _ := newTestViews(t)
			gw.getUserDetailsFn = func(context.Context, string) (*model.UserProfile, error) { return profileWithBMI(22), nil }
			gw.latestFoodLogsFn = func(context.Context, string, int) ([]model.FoodLogEntry, error) { return tt.logs, tt.err }

			res := v.Dashboard(context.Background(), authenticatedStore())

			data := res.Data.(*DashboardData)
			if !hasNotice(data.Base, LevelInfo, tt.want) {
				t.Errorf("notices = %+v, want %q", data.Notices, tt.want)
			}
			if data.HasLogs || len(data.Charts) != 0 {
				t.Error("no charts expected without logs")
			}
			if gw.callCount() != 2 {
				t.Errorf("calls = %v, predict must not be called", gw.calls)
			}
		})
	}
}

func TestDashboard_RecommendationFailureDoesNotStopPage(t *testing.T) {
	v, gw, _ := newTestViews(t)
	gw.getUserDetailsFn = func(context.Context, string) (*model.UserProfile, error) { return profileWithBMI(17), nil }
	gw.latestFoodLogsFn = func(context.Context, string, int) ([]model.FoodLogEntry, error) {
		return []model.FoodLogEntry{foodLog("1", "2024-06-01", "snack", "Apple", 95, 0)}, nil
	}
	gw.predictDietFn = func(context.Context, string, model.UserProfile) (string, error) {
		return "", rejected(backend.OpPredictDiet, 500, "")
	}

	res := v.Dashboard(context.Background(), authenticatedStore())

	if res.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", res.Status)
	}
	data := res.Data.(*DashboardData)
	if !hasNotice(data.Base, LevelWarning, model.MsgRecommendationMissing) {
		t.Errorf("notices = %+v", data.Notices)
	}
	if data.BMICategory != "Underweight" || len(data.Charts) != 3 || data.Recommendation != "" {
		t.Errorf("page should still show metrics and charts: %+v", data)
	}
}

func TestDashboard_EmptyRecommendationUsesFallback(t *testing.T) {
	v, gw, _ := newTestViews(t)
	gw.getUserDetailsFn = func(context.Context, string) (*model.UserProfile, error) { return profileWithBMI(22), nil }
	gw.latestFoodLogsFn = func(context.Context, string, int) ([]model.FoodLogEntry, error) {
		return []model.FoodLogEntry{foodLog("1", "2024-06-01", "snack", "Apple", 95, 0)}, nil
	}
	gw.predictDietFn = func(context.Context, string, model.UserProfile) (string, error) { return "", nil }

	res := v.Dashboard(context.Background(), authenticatedStore())

	if rec := string(res.Data.(*DashboardData).Recommendation); !strings.Contains(rec, "No recommendation available.") {
		t.Errorf("Recommendation = %q", rec)
	}
}

func TestDashboard_ConnectivityFailure(t *testing.T) {
	v, gw, _ := newTestViews(t)
	gw.getUserDetailsFn = func(context.Context, string) (*model.UserProfile, error) {
		return nil, unreachable(backend.OpGetUserDetails)
	}

	res := v.Dashboard(context.Background(), authenticatedStore())

	if res.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", res.Status)
	}
	if got := errorMessage(res.Data.(*DashboardData).Base); got != model.MsgCannotConnect {
		t.Errorf("message = %q", got)
	}
}

package view

import (
	"context"
	"html/template"
	"log/slog"
	"strings"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/nutrition"
	"github.com/hitoshi/nutriapp/internal/session"
)

// ChartView はテンプレートに埋め込むグラフ。
type ChartView struct {
	ID    string
	Title string
	Spec  string
}

// DashboardData はダッシュボードの表示データ。
type DashboardData struct {
	Base
	Username       string
	HasProfile     bool
	HasLogs        bool
	BMI            string
	BMICategory    string
	BMIColor       string
	AvgCalories    string
	Charts         []ChartView
	Recommendation template.HTML
}

// Dashboard はBMI、直近7日間の摂取カロリー、グラフ、食事推奨を表示する。
// プロフィールや食事記録が取得できない場合は案内を表示してそこで止める。
// 食事推奨の取得失敗はページ全体を止めない。
func (v *Views) Dashboard(ctx context.Context, s *session.Store) Result {
	if res, ok := RequireAuthentication(s, PageDashboard); !ok {
		return res
	}
	token := s.Token()
	data := &DashboardData{Username: displayUsername(s.Username())}
	render := func() Result { return Render(PageDashboard, TmplDashboard, data) }

	profile, err := v.gateway.GetUserDetails(ctx, token)
	if err != nil {
		v.logFailure("dashboard profile fetch failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.notify(LevelInfo, model.MsgProfileGuidance)
		return render()
	}
	data.HasProfile = true

	logs, err := v.gateway.LatestFoodLogs(ctx, token, dashboardLogDays)
	if err != nil {
		v.logFailure("dashboard food log fetch failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.notify(LevelInfo, model.MsgNoFoodLogsYet)
		return render()
	}
	if len(logs) == 0 {
		data.notify(LevelInfo, model.MsgFoodLogsEmpty)
		return render()
	}
	data.HasLogs = true

	if bmi, ok := nutrition.ProfileBMI(*profile); ok {
		category := nutrition.ClassifyBMI(bmi)
		data.BMI = nutrition.FormatNumber(bmi)
		data.BMICategory = model.BMICategoryLabel(category)
		data.BMIColor = nutrition.BMIColor(category)
	} else {
		data.BMI = nutrition.Missing
		data.BMIColor = nutrition.BMIColor(model.BMIUnknown)
	}

	if avg, ok := nutrition.AverageCalories(logs); ok {
		data.AvgCalories = nutrition.FormatNumber(avg)
	} else {
		data.AvgCalories = nutrition.Missing
	}

	data.Charts = v.dashboardCharts(logs)
	v.recommend(ctx, token, *profile, data)
	return render()
}

func (v *Views) dashboardCharts(logs []model.FoodLogEntry) []ChartView {
	specs := []struct {
		id    string
		title string
		chart nutrition.Chart
	}{
		{"calories-chart", "Calories from Last 7 days", nutrition.CaloriesLineChart(nutrition.DailyCalories(logs))},
		{"macro-chart", "Macronutrient Breakdown", nutrition.MacroBarChart(nutrition.MacroTotals(logs))},
		{"meal-chart", "Meal Type Distribution", nutrition.MealPieChart(nutrition.MealDistribution(logs))},
	}

	charts := make([]ChartView, 0, len(specs))
	for _, sp := range specs {
		raw, err := sp.chart.JSON()
		if err != nil {
			v.logger.Error("failed to encode chart", slog.String("chart", sp.id), slog.String("error", err.Error()))
			continue
		}
		charts = append(charts, ChartView{ID: sp.id, Title: sp.title, Spec: raw})
	}
	return charts
}

// recommend は食事推奨を取得してdataに設定する。失敗した場合は警告を追加する。
func (v *Views) recommend(ctx context.Context, token string, profile model.UserProfile, data *DashboardData) {
	text, err := v.gateway.PredictDiet(ctx, token, profile)
	if err != nil {
		v.logFailure("diet recommendation failed", err)
		if backend.IsConnectivity(err) || backend.IsRejected(err) {
			data.notify(LevelWarning, model.MsgRecommendationMissing)
			return
		}
		data.notify(LevelError, model.MsgRecommendationFailed)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = model.MsgNoRecommendation
	}
	data.Recommendation = v.renderMarkdown("✅ " + capitalize(text))
}

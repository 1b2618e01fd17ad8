package view

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/nutrition"
	"github.com/hitoshi/nutriapp/internal/session"
)

// AnalysisData は栄養素分析画面の表示データ。
type AnalysisData struct {
	Base
	Rows  []nutrition.NutrientRow
	Chart *ChartView
}

// NutrientAnalysis は栄養素ごとの平均摂取量と推奨量の比較表とグラフを表示する。
func (v *Views) NutrientAnalysis(ctx context.Context, s *session.Store) Result {
	if res, ok := RequireAuthentication(s, PageNutrientAnalysis); !ok {
		return res
	}
	data := &AnalysisData{}
	render := func() Result { return Render(PageNutrientAnalysis, TmplAnalysis, data) }

	summary, err := v.gateway.NutritionSummary(ctx, s.Token())
	if err != nil {
		v.logFailure("nutrition summary fetch failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.Error = model.NewRejectedError("", model.MsgNutrientFetchFailed)
		return render().WithStatus(http.StatusBadGateway)
	}

	data.Rows = nutrition.NutrientRows(*summary)
	if len(data.Rows) == 0 {
		return render()
	}
	raw, err := nutrition.IntakeComparisonChart(data.Rows).JSON()
	if err != nil {
		v.logger.Error("failed to encode chart", slog.String("chart", "intake-chart"), slog.String("error", err.Error()))
		return render()
	}
	data.Chart = &ChartView{ID: "intake-chart", Title: "Actual vs Recommended Nutrient Intake", Spec: raw}
	return render()
}

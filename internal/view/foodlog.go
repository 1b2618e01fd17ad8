package view

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/nutrition"
	"github.com/hitoshi/nutriapp/internal/session"
)

// 削除結果の通知コード。一覧画面のクエリパラメータnoticeで受け渡す。
const (
	NoticeDeleted      = "deleted"
	NoticeDeleteFailed = "delete_failed"
)

// NutrientInput は食事記録フォームの栄養素入力欄。
type NutrientInput struct {
	Key   string
	Label string
	Value string
}

// LogFoodData は食事記録画面の表示データ。
type LogFoodData struct {
	Base
	Date      string
	Food      string
	MealType  string
	MealTypes []string
	Nutrients []NutrientInput
	Created   bool
}

func newLogFoodData(form FoodLogForm) *LogFoodData {
	data := &LogFoodData{
		Date:      form.Date,
		Food:      form.Food,
		MealType:  form.MealType,
		MealTypes: make([]string, 0, len(model.MealTypes)),
		Nutrients: make([]NutrientInput, 0, len(model.AllNutrients)),
	}
	for _, m := range model.MealTypes {
		data.MealTypes = append(data.MealTypes, model.MealTypeLabel(m))
	}
	for _, n := range model.AllNutrients {
		data.Nutrients = append(data.Nutrients, NutrientInput{
			Key:   string(n),
			Label: FieldLabel(string(n)),
			Value: nutrition.FormatNumber(form.Nutrients[n]),
		})
	}
	return data
}

// LogFoodPage は食事記録フォームを表示する。日付の初期値は今日。
func (v *Views) LogFoodPage(_ context.Context, s *session.Store) Result {
	if res, ok := RequireAuthentication(s, PageLogFood); !ok {
		return res
	}
	return Render(PageLogFood, TmplLogFood, newLogFoodData(newFoodLogForm(v.now())))
}

// LogFood は食事記録を作成する。
// 食品名が空、またはカロリーが0以下の場合は両方の警告を出し、バックエンドには送らない。
func (v *Views) LogFood(ctx context.Context, s *session.Store, form FoodLogForm) Result {
	if res, ok := RequireAuthentication(s, PageLogFood); !ok {
		return res
	}
	data := newLogFoodData(form)
	render := func() Result { return Render(PageLogFood, TmplLogFood, data) }

	invalid := false
	if strings.TrimSpace(form.Food) == "" {
		data.notify(LevelWarning, model.MsgInvalidFoodName)
		invalid = true
	}
	if form.Nutrients[model.NutrientCalories] <= 0 {
		data.notify(LevelWarning, model.MsgInvalidCalories)
		invalid = true
	}
	errs := append([]model.FieldError(nil), form.Errors...)
	errs = append(errs, v.forms.check(form)...)
	if len(errs) > 0 {
		data.Error = model.NewValidationError(errs...)
		invalid = true
	}
	if invalid {
		return render().WithStatus(http.StatusBadRequest)
	}

	entry := model.FoodLogEntry{
		LogDate:   form.Date,
		Food:      strings.TrimSpace(form.Food),
		MealType:  form.MealType,
		UserID:    s.UserID(),
		Nutrients: make(map[model.Nutrient]model.OptFloat, len(form.Nutrients)),
	}
	for n, val := range form.Nutrients {
		entry.Nutrients[n] = model.Float(val)
	}

	if err := v.gateway.CreateFoodLog(ctx, s.Token(), entry); err != nil {
		v.logFailure("food log save failed", err)
		if appErr, status := connectivityError(err, model.MsgNetworkError); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.Error = model.NewRejectedError("", model.MsgFoodLogSaveFailed)
		return render().WithStatus(http.StatusBadGateway)
	}

	data = newLogFoodData(newFoodLogForm(v.now()))
	data.Created = true
	data.notify(LevelSuccess, model.MsgFoodLogCreated)
	return render()
}

// LogPanel は食事記録一覧の折りたたみパネル1件。
type LogPanel struct {
	ID     string
	Title  string
	Fields []nutrition.DetailField
}

// ViewLogsData は食事記録一覧の表示データ。
type ViewLogsData struct {
	Base
	Entries []LogPanel
}

// ViewLogs は食事記録を新しい順に一覧表示する。
// noticeには削除後のリダイレクトで渡された通知コードを指定する。
func (v *Views) ViewLogs(ctx context.Context, s *session.Store, notice string) Result {
	if res, ok := RequireAuthentication(s, PageViewLogs); !ok {
		return res
	}
	data := &ViewLogsData{}
	switch notice {
	case NoticeDeleted:
		data.notify(LevelSuccess, model.MsgFoodLogDeleted)
	case NoticeDeleteFailed:
		data.notify(LevelError, model.MsgDeleteFailed)
	}
	render := func() Result { return Render(PageViewLogs, TmplViewLogs, data) }

	logs, err := v.gateway.ListFoodLogs(ctx, s.Token())
	if err != nil {
		v.logFailure("food log list failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.Error = model.NewRejectedError("", model.MsgFoodLogsFetchFailed+": "+v.detailOr(err, "Unknown error"))
		return render().WithStatus(http.StatusBadGateway)
	}
	if len(logs) == 0 {
		data.notify(LevelInfo, model.MsgNoFoodLogsFound)
		return render()
	}

	for _, e := range nutrition.SortLogsDesc(logs) {
		e = nutrition.RoundNutrients(e)
		data.Entries = append(data.Entries, LogPanel{
			ID:     string(e.ID),
			Title:  nutrition.PanelTitle(e),
			Fields: nutrition.DetailFields(e),
		})
	}
	return render()
}

// DeleteOutcome は食事記録削除の結果。JSONで応答する場合に使う。
type DeleteOutcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// DeleteLog は食事記録を1件削除し、結果の通知コードを付けて一覧画面へ遷移する。
// ResultのDataには削除結果のDeleteOutcomeを設定する。
func (v *Views) DeleteLog(ctx context.Context, s *session.Store, id string) Result {
	if res, ok := RequireAuthentication(s, PageViewLogs); !ok {
		return res
	}
	id = strings.TrimSpace(id)
	outcome := DeleteOutcome{OK: true, Message: model.MsgFoodLogDeleted}
	notice := NoticeDeleted

	ok := id != ""
	if ok {
		if err := v.gateway.DeleteFoodLog(ctx, s.Token(), model.LogID(id)); err != nil {
			v.logFailure("food log delete failed", err)
			ok = false
		}
	}
	if !ok {
		outcome = DeleteOutcome{OK: false, Message: model.MsgDeleteFailed}
		notice = NoticeDeleteFailed
	}
	return Redirect(PageViewLogs, url.Values{"notice": {notice}}).WithData(outcome)
}

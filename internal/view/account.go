package view

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/session"
)

// DeleteAccountData はアカウント削除画面の表示データ。
type DeleteAccountData struct {
	Base
}

// DeleteAccountPage はアカウント削除の確認フォームを表示する。
func (v *Views) DeleteAccountPage(_ context.Context, s *session.Store) Result {
	if res, ok := RequireAuthentication(s, PageDeleteAccount); !ok {
		return res
	}
	return Render(PageDeleteAccount, TmplDeleteAccount, &DeleteAccountData{})
}

// DeleteAccount はパスワードの再入力と確認チェックを条件にアカウントを削除する。
// 成功した場合はセッションを破棄し、完了画面の表示後にトップ画面へ遷移する。
func (v *Views) DeleteAccount(ctx context.Context, s *session.Store, form DeleteAccountForm) Result {
	if res, ok := RequireAuthentication(s, PageDeleteAccount); !ok {
		return res
	}
	data := &DeleteAccountData{}
	render := func() Result { return Render(PageDeleteAccount, TmplDeleteAccount, data) }

	if form.Password == "" || !form.Confirm {
		data.notify(LevelWarning, model.MsgDeleteConfirmRequired)
		return render().WithStatus(http.StatusBadRequest)
	}

	if err := v.gateway.DeleteAccount(ctx, s.Token(), form.Password); err != nil {
		v.logFailure("account deletion failed", err)
		if appErr, status := connectivityError(err, model.MsgCannotConnect); appErr != nil {
			data.Error = appErr
			return render().WithStatus(status)
		}
		data.Error = model.NewRejectedError(v.detailOr(err, ""), model.MsgAccountDeleteFailed)
		return render().WithStatus(http.StatusBadRequest)
	}

	s.Clear()
	done := &DeleteAccountData{}
	done.notify(LevelSuccess, model.MsgAccountDeleted)
	done.notify(LevelInfo, model.MsgRedirectingShortly)
	return Render(PageDeleteAccount, TmplAccountDeleted, done).
		WithRefresh(PageLanding, accountDeletedRefresh).
		Committed()
}

package view

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutriapp/internal/backend"
	"github.com/hitoshi/nutriapp/internal/model"
	"github.com/hitoshi/nutriapp/internal/session"
)

// ProfileOptions はプロフィールフォームの選択肢。
type ProfileOptions struct {
	Genders         []string
	ChronicDiseases []string
	YesNo           []string
	DietaryHabits   []string
	Cuisines        []string
	FoodAversions   []string
	Allergies       []string
}

var profileOptions = ProfileOptions{
	Genders:         model.Genders,
	ChronicDiseases: model.ChronicDiseases,
	YesNo:           model.YesNoOptions,
	DietaryHabits:   model.DietaryHabits,
	Cuisines:        model.Cuisines,
	FoodAversions:   model.FoodAversions,
	Allergies:       model.Allergies,
}

// ProfileData はプロフィール画面の表示データ。
// ShowFormがfalseの場合は通信エラーのためフォームを出さない。
type ProfileData struct {
	Base
	ShowForm bool
	Create   bool
	Profile  model.UserProfile
	Options  ProfileOptions
}

func newProfileData() *ProfileData {
	return &ProfileData{Options: profileOptions}
}

// ProfilePage はプロフィール画面を表示する。
// 登録済みなら既存値で更新フォームを、未登録なら既定値で新規登録フォームを出す。
func (v *Views) ProfilePage(ctx context.Context, s *session.Store) Result {
	if res, ok := RequireAuthentication(s, PageProfile); !ok {
		return res
	}
	data := newProfileData()
	render := func() Result { return Render(PageProfile, TmplProfile, data) }

	profile, err := v.gateway.GetUserDetails(ctx, s.Token())
	switch {
	case err == nil:
		data.ShowForm = true
		data.Profile = *profile
		return render()
	case backend.IsTimeout(err):
		v.logFailure("profile fetch timed out", err)
		data.Error = model.NewTimeoutError(model.MsgRequestTimedOut)
		return render().WithStatus(http.StatusGatewayTimeout)
	case backend.IsConnectivity(err):
		v.logFailure("profile fetch failed", err)
		data.Error = model.NewConnectivityError(model.MsgBackendConnectFailed)
		return render().WithStatus(http.StatusBadGateway)
	case !backend.IsRejected(err):
		// 応答を解釈できない場合は既存プロフィールを上書きしないようフォームを出さない
		v.logFailure("profile fetch failed", err)
		data.Error = model.NewRejectedError("", model.MsgProfileFetchFailed)
		return render().WithStatus(http.StatusBadGateway)
	}

	data.ShowForm = true
	data.Create = true
	data.Profile = model.DefaultUserProfile()
	if backend.IsStatus(err, http.StatusNotFound) {
		data.notify(LevelInfo, model.MsgProfileMissing)
	} else {
		v.logFailure("profile fetch failed", err)
		data.Error = model.NewRejectedError("", model.MsgProfileFetchFailed)
	}
	return render()
}

// SaveProfile はプロフィールを保存する。
// 新規登録はユーザーIDを付けてPOST、更新はPATCHで送る。入力が範囲外の場合は送信しない。
func (v *Views) SaveProfile(ctx context.Context, s *session.Store, form ProfileForm) Result {
	if res, ok := RequireAuthentication(s, PageProfile); !ok {
		return res
	}
	data := newProfileData()
	data.ShowForm = true
	data.Create = form.Create
	data.Profile = form.Profile
	render := func() Result { return Render(PageProfile, TmplProfile, data) }

	errs := append([]model.FieldError(nil), form.Errors...)
	if len(errs) == 0 {
		errs = v.forms.check(form.Profile)
	}
	if len(errs) > 0 {
		data.Error = model.NewValidationError(errs...)
		return render().WithStatus(http.StatusBadRequest)
	}

	var err error
	if form.Create {
		err = v.gateway.CreateUserDetails(ctx, s.Token(), form.Profile, s.UserID())
	} else {
		err = v.gateway.UpdateUserDetails(ctx, s.Token(), form.Profile)
	}
	if err != nil {
		v.logFailure("profile save failed", err)
		switch {
		case backend.IsTimeout(err):
			data.Error = model.NewTimeoutError(model.MsgProfileSaveTimedOut)
			return render().WithStatus(http.StatusGatewayTimeout)
		case backend.IsConnectivity(err):
			data.Error = model.NewConnectivityError(model.MsgBackendConnectFailed)
			return render().WithStatus(http.StatusBadGateway)
		}
		data.Error = model.NewRejectedError("", "Failed to save profile: "+v.rejectedText(err, "Unknown error"))
		return render().WithStatus(http.StatusBadRequest)
	}

	data.Create = false
	data.notify(LevelSuccess, model.MsgProfileSaved)
	return render()
}

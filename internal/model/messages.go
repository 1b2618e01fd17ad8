package model

// 画面に表示するメッセージ。
const (
	MsgLoginRequired          = "You must be logged in to view this page."
	MsgInvalidCredentials     = "Invalid credentials. Please try again."
	MsgMissingCredentials     = "Please enter both username and password."
	MsgAutoLoginFailed        = "Account created but automatic login failed. Please sign in manually."
	MsgRegistrationFailed     = "Registration failed."
	MsgProfileMissing         = "You haven't filled in your profile details yet."
	MsgProfileFetchFailed     = "Failed to fetch user details."
	MsgRequestTimedOut        = "The request timed out. Please check your connection."
	MsgBackendConnectFailed   = "Failed to connect to the backend. Try again later."
	MsgProfileSaveTimedOut    = "Request timed out while saving your profile."
	MsgUnexpected             = "⚠️ An unexpected error occurred. Please try again."
	MsgNoFoodLogsYet          = "No food logs available yet. Start by logging your first meal!"
	MsgFoodLogsEmpty          = "You're all set! But it looks like you haven't logged any food yet."
	MsgRecommendationMissing  = "Could not fetch diet recommendation at the moment."
	MsgFoodLogsFetchFailed    = "Failed to fetch food logs"
	MsgRecommendationFailed   = "Failed to fetch diet recommendation."
	MsgFoodLogSaveFailed      = "Error saving food log."
	MsgNetworkError           = "⚠️ Network error. Please check your internet connection."
	MsgNoFoodLogsFound        = "No food logs found."
	MsgDeleteFailed           = "❌ Failed to delete."
	MsgNutrientFetchFailed    = "Failed to fetch nutrient data."
	MsgInvalidFoodName        = "⚠️ Please enter a valid food name."
	MsgInvalidCalories        = "❌ Please enter a non-zero calorie value."
	MsgAccountDeleteFailed    = "❌ Failed to delete your account."
	MsgCannotConnect          = "⚠️ Cannot connect to the server. Please check your internet connection or try again later."
	MsgProfileGuidance        = "📌 To unlock full features like BMI analysis and diet recommendations, please update your profile."
	MsgDeleteConfirmRequired  = "Please re-enter your password and confirm that you understand the consequences."
	MsgLoginSucceeded         = "Login successful!"
	MsgAccountCreated         = "Account created successfully! Logging you in..."
	MsgProfileSaved           = "User profile saved successfully!"
	MsgFoodLogCreated         = "Food log created successfully."
	MsgFoodLogDeleted         = "✅ Deleted successfully."
	MsgAccountDeleted         = "✅ Your account has been deleted successfully."
	MsgRedirectingToDashboard = "Redirecting to Dashboard..."
	MsgRedirectingShortly     = "You will be redirected shortly..."
	MsgNoRecommendation       = "no recommendation available."
)

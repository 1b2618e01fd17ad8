package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// defaultLevel はSetupDefaultで設定したグローバルロガーのログレベル。
// 設定読み込み前にロガーを使うため、レベルは後からSetLevelで変更する。
var defaultLevel = new(slog.LevelVar)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
func Setup(w io.Writer) *slog.Logger {
	return SetupWithLevel(w, slog.LevelInfo)
}

// SetupWithLevel は指定レベル以上を出力するJSON構造化ログのslog.Loggerを生成する。
func SetupWithLevel(w io.Writer, level slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	defaultLevel.Set(slog.LevelInfo)
	logger := SetupWithLevel(w, defaultLevel)
	slog.SetDefault(logger)
}

// SetLevel はグローバルロガーのログレベルを変更する。
// 不明なレベル名はinfoとして扱う。
func SetLevel(name string) {
	defaultLevel.Set(ParseLevel(name))
}

// ParseLevel はレベル名（debug, info, warn, error）をslog.Levelに変換する。
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package i18n translates the user-facing strings of the command registrar.
//
// Messages are keyed by their English text and formatted with
// golang.org/x/text/message printers. Unknown locales fall back to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	CustomProject    = "[Custom] The %s@%s project."
	ExecAnalysis     = "Subcommand execution analysis"
	UnknownCommand   = "unknown command %s"
	ExecUsage        = "[subcommand] -- [method] [params]"
	HistoryShort     = "Show recorded invocations"
	MethodFallback   = "Run %s on the %s component"
	NoMethodsListing = "No methods are known for this project; any method name is forwarded to the component."
)

type translation struct {
	en, zh string
}

var translations = map[string]translation{
	CustomProject:    {en: CustomProject, zh: "[自定义] %s@%s 项目。"},
	ExecAnalysis:     {en: ExecAnalysis, zh: "子命令执行分析"},
	UnknownCommand:   {en: UnknownCommand, zh: "未知命令 %s"},
	ExecUsage:        {en: ExecUsage, zh: "[子命令] -- [方法] [参数]"},
	HistoryShort:     {en: HistoryShort, zh: "显示已记录的调用"},
	MethodFallback:   {en: MethodFallback, zh: "在 %[2]s 组件上执行 %[1]s"},
	NoMethodsListing: {en: NoMethodsListing, zh: "该项目没有已知方法；任何方法名都会转发给组件。"},
}

// Supported lists the locales with a full translation, English first.
var Supported = []language.Tag{language.English, language.Chinese}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(Supported)
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, tr := range translations {
		// SetString only fails for malformed tags, and both tags are constants.
		_ = b.SetString(language.English, key, tr.en)
		_ = b.SetString(language.Chinese, key, tr.zh)
	}
	return b
}

// Printer returns a printer for locale, e.g. "en", "zh" or "zh-CN".
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(cat))
}

// Match maps locale onto the closest supported language, English when there is
// no acceptable match.
func Match(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Sprintf formats key for locale.
func Sprintf(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}

package services

import "github.com/yukikurage/kanban-board/internal/config"

// Messages holds the user-facing strings produced by the services.
type Messages struct {
	DefaultProjectName string
	ParseFailed        string
	SubTasksFailed     string
	SearchFailed       string
	BriefingFailed     string
	BriefingLanguage   string
}

var catalogs = map[string]Messages{
	config.LocaleEnglish: {
		DefaultProjectName: "My first project",
		ParseFailed:        "Failed to parse the task with the AI assistant.",
		SubTasksFailed:     "Failed to generate sub-tasks with the AI assistant.",
		SearchFailed:       "Failed to search tasks with the AI assistant.",
		BriefingFailed:     "Failed to generate the daily briefing with the AI assistant.",
		BriefingLanguage:   "English",
	},
	config.LocaleArabic: {
		DefaultProjectName: "مشروعي الأول",
		ParseFailed:        "فشل في تحليل المهمة باستخدام الذكاء الاصطناعي.",
		SubTasksFailed:     "فشل في إنشاء مهام فرعية باستخدام الذكاء الاصطناعي.",
		SearchFailed:       "فشل في البحث عن المهام باستخدام الذكاء الاصطناعي.",
		BriefingFailed:     "فشل في إنشاء الملخص اليومي باستخدام الذكاء الاصطناعي.",
		BriefingLanguage:   "Arabic",
	},
}

// MessagesFor returns the catalog for locale, falling back to English.
func MessagesFor(locale string) Messages {
	if m, ok := catalogs[locale]; ok {
		return m
	}
	return catalogs[config.LocaleEnglish]
}

package models

// JobStep - курсор выполнения workflow генерации.
// Сохраняется после каждого завершенного шага, чтобы при повторной доставке
// задачи воркер продолжил с последнего завершенного шага, а не повторял
// внешние вызовы.
type JobStep string

const (
	JobStepNone          JobStep = ""
	JobStepChartComputed JobStep = "chart_computed"
	JobStepTextGenerated JobStep = "text_generated"
)

// JobProgress - промежуточное состояние workflow генерации.
// Хранится в Redis по ключу roastjob:<id> с тем же TTL, что и сама запись.
type JobProgress struct {
	Step    JobStep    `json:"step"`
	Chart   *ChartData `json:"chart,omitempty"`
	RawText string     `json:"rawText,omitempty"`
}

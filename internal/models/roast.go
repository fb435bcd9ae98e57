package models

import "time"

// RoastStatus определяет состояние записи роаста.
type RoastStatus string

const (
	RoastStatusGenerating RoastStatus = "generating"
	RoastStatusReady      RoastStatus = "ready"
	RoastStatusError      RoastStatus = "error"
)

// RoastSection - один платный блок контента с заголовком и опциональной цитатой.
type RoastSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Callout string `json:"callout,omitempty"`
}

// Roast - персистентная запись одного запроса на генерацию.
// Хранится в Redis по ключу roast:<id> с TTL 30 дней.
// Поля знаков/тизера/секций заполняются только при переходе в статус ready,
// причем все вместе (читатель не должен видеть частично заполненную запись).
type Roast struct {
	ID        string         `json:"id"`
	Status    RoastStatus    `json:"status"`
	Name      string         `json:"name"`
	Paid      bool           `json:"paid"`
	CreatedAt time.Time      `json:"createdAt"`
	SunSign   string         `json:"sunSign,omitempty"`
	MoonSign  string         `json:"moonSign,omitempty"`
	Rising    string         `json:"rising,omitempty"`
	Mercury   string         `json:"mercury,omitempty"`
	Venus     string         `json:"venus,omitempty"`
	Mars      string         `json:"mars,omitempty"`
	Jupiter   string         `json:"jupiter,omitempty"`
	Saturn    string         `json:"saturn,omitempty"`
	Teaser    string         `json:"teaser,omitempty"`
	Sections  []RoastSection `json:"sections,omitempty"`
	Error     string         `json:"error,omitempty"`
}

package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// FallbackLanguage язык, на который откатывается название услуги
const FallbackLanguage = "ru"

// LocalizedName название услуги: либо одна строка, либо переводы по языкам
type LocalizedName struct {
	plain        string
	translations map[string]string
}

// PlainName название без переводов
func PlainName(s string) LocalizedName {
	return LocalizedName{plain: s}
}

// Localized название с переводами (ключ - код языка)
func Localized(translations map[string]string) LocalizedName {
	normalized := make(map[string]string, len(translations))
	for lang, value := range translations {
		normalized[NormalizeLanguage(lang)] = value
	}
	return LocalizedName{translations: normalized}
}

// IsLocalized сообщает, хранит ли название переводы
func (n LocalizedName) IsLocalized() bool {
	return n.translations != nil
}

// Translations копия переводов (nil для простого названия)
func (n LocalizedName) Translations() map[string]string {
	if n.translations == nil {
		return nil
	}
	out := make(map[string]string, len(n.translations))
	for k, v := range n.translations {
		out[k] = v
	}
	return out
}

// Resolve возвращает название на языке lang.
// Порядок: запрошенный язык -> русский -> первый доступный перевод.
func (n LocalizedName) Resolve(lang string) string {
	if !n.IsLocalized() {
		return n.plain
	}

	if value, ok := n.translations[NormalizeLanguage(lang)]; ok && value != "" {
		return value
	}
	if value, ok := n.translations[FallbackLanguage]; ok && value != "" {
		return value
	}

	langs := make([]string, 0, len(n.translations))
	for l, value := range n.translations {
		if value != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return ""
	}
	sort.Strings(langs)
	return n.translations[langs[0]]
}

func (n LocalizedName) MarshalJSON() ([]byte, error) {
	if n.IsLocalized() {
		return json.Marshal(n.translations)
	}
	return json.Marshal(n.plain)
}

func (n *LocalizedName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return err
		}
		*n = Localized(translations)
		return nil
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	*n = PlainName(plain)
	return nil
}

// NormalizeLanguage приводит код языка Telegram ("en-US", "pt-br") к базовому ("en", "pt")
func NormalizeLanguage(code string) string {
	if code == "" {
		return FallbackLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}

// Service услуга салона
type Service struct {
	ID              int64           `json:"id"`
	Name            LocalizedName   `json:"name"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// DisplayName название услуги на языке пользователя
func (s *Service) DisplayName(lang string) string {
	return s.Name.Resolve(lang)
}

package app

import (
	"gopkg.in/telebot.v3"
)

// Callback tokens. The single OnCallback dispatcher in the telegram layer
// routes button presses to service methods by these values.
const (
	CallbackMenu        = "back:menu"
	CallbackPremiumPage = "premium:page"
	CallbackPremiumBuy  = "premium:buy"
	CallbackLuxPage     = "lux:page"
	CallbackLuxRequest  = "lux:request"
	CallbackFreeStart   = "free:start"
	CallbackFreeBegin   = "free:begin"
	CallbackFreeRules   = "free:rules"
	CallbackFreePosted  = "free:posted"

	// Prefixes for parameterized buttons, e.g. "free:niche:Бизнес".
	CallbackNichePrefix = "free:niche:"
	CallbackGoalPrefix  = "free:goal:"
)

const portfolioURL = "https://t.me/neurolux2025"

// nicheOptions and goalOptions are button shortcuts; free text is accepted in
// the same states as well.
var (
	nicheOptions = []string{"Эксперт", "Бизнес", "Товарка", "Блог", "Другое"}
	goalOptions  = []string{"Просмотры", "Подписчики", "Заявки"}
)

func managerURL(username string) string {
	return "https://t.me/" + username
}

func btn(text, data string) telebot.InlineButton {
	return telebot.InlineButton{Text: text, Data: data}
}

func urlBtn(text, url string) telebot.InlineButton {
	return telebot.InlineButton{Text: text, URL: url}
}

func inline(rows ...[]telebot.InlineButton) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func mainMenuKeyboard(managerUsername string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn("🎁 Бесплатный 3-дневный тест", CallbackFreeStart)},
		[]telebot.InlineButton{btn("💎 Premium — основной тариф", CallbackPremiumPage)},
		[]telebot.InlineButton{btn("👑 Lux — апгрейд", CallbackLuxPage)},
		[]telebot.InlineButton{urlBtn("📂 Портфолио / Кейсы", portfolioURL)},
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
	)
}

func freeIntroKeyboard(managerUsername string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn("✅ Начать тест", CallbackFreeBegin)},
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

func nicheKeyboard() *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(nicheOptions)+1)
	for _, o := range nicheOptions {
		rows = append(rows, []telebot.InlineButton{btn(o, CallbackNichePrefix+o)})
	}
	rows = append(rows, []telebot.InlineButton{btn("🔙 В меню", CallbackMenu)})
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func goalKeyboard() *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(goalOptions)+1)
	for _, o := range goalOptions {
		rows = append(rows, []telebot.InlineButton{btn(o, CallbackGoalPrefix+o)})
	}
	rows = append(rows, []telebot.InlineButton{btn("🔙 В меню", CallbackMenu)})
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func dayActionsKeyboard() *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn("✅ Я выложил (ввести ссылку)", CallbackFreePosted)},
		[]telebot.InlineButton{btn("❓ Как правильно выложить?", CallbackFreeRules)},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

func afterTestKeyboard(managerUsername string) *telebot.ReplyMarkup {
	// Premium is the primary CTA after the test; Lux is the optional upgrade.
	return inline(
		[]telebot.InlineButton{btn("✅ Продолжить в Premium", CallbackPremiumBuy)},
		[]telebot.InlineButton{btn("👑 Апгрейд Lux (по желанию)", CallbackLuxPage)},
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

func premiumKeyboard(managerUsername string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn("✅ Запросить подключение Premium", CallbackPremiumBuy)},
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

func luxKeyboard(managerUsername string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn("✅ Запросить Lux (анкета)", CallbackLuxRequest)},
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

func managerOnlyKeyboard(managerUsername string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{urlBtn("👨‍💼 Менеджер", managerURL(managerUsername))},
		[]telebot.InlineButton{btn("🔙 В меню", CallbackMenu)},
	)
}

// NicheOption reports whether v is one of the predefined niche buttons.
// Used by the callback dispatcher to guard against forged callback payloads.
func NicheOption(v string) bool {
	for _, o := range nicheOptions {
		if o == v {
			return true
		}
	}
	return false
}

// GoalOption reports whether v is one of the predefined goal buttons.
func GoalOption(v string) bool {
	for _, o := range goalOptions {
		if o == v {
			return true
		}
	}
	return false
}

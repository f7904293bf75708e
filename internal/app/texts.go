package app

// User-facing texts. The bot speaks Russian to its audience; keep all copy in
// one place so the funnel logic stays readable.
const (
	TextStart = "Привет! Это NeuroLux — вирусные TikTok-ролики под ключ.\n\n" +
		"Выбери, с чего начнём:"

	TextFreeIntro = "🎁 *Бесплатный 3-дневный тест*\n\n" +
		"Мы соберём 3 ролика под твою нишу, ты выкладываешь их 3 дня подряд " +
		"и присылаешь статистику. В конце — отчёт и вывод по формату."

	TextFreeRules = "Как правильно выложить:\n" +
		"1. Выкладывай ролик в течение 24 часов после старта дня.\n" +
		"2. Не меняй обложку и описание.\n" +
		"3. Через сутки пришли статистику по кнопке."

	TextPremiumPage = "💎 *Premium — основной тариф*\n\n" +
		"Серия роликов каждый месяц, монтаж и хуки на нашей стороне. " +
		"Оплата и детали — лично с менеджером."

	TextLuxPage = "👑 *Lux — апгрейд*\n\n" +
		"Расширенный объём: до 30 роликов в месяц, приоритетный монтаж, " +
		"личное сопровождение. Заполни короткую анкету — менеджер свяжется."

	TextManagerInstruction = "Дальше всё просто: напиши менеджеру, он ответит в течение дня."
	TextPremiumRequestSent = "✅ Заявка на Premium отправлена. Менеджер свяжется с тобой лично."
	TextLuxRequestSent     = "✅ Заявка на Lux отправлена. Менеджер свяжется с тобой лично."

	TextAfterTestSummary = "Тест завершён! Самый рабочий путь дальше — Premium: " +
		"серия роликов на постоянной основе. Lux — если нужен максимальный объём."

	TextBackToMenu = "🔙 Возврат в меню:"

	// Free test funnel prompts
	TextAskNiche       = "Выбери нишу кнопкой или напиши свою:"
	TextAskAccountLink = "Ссылка на TikTok аккаунт:"
	TextAskGoal        = "Цель теста — выбери кнопкой или напиши свою:"
	TextAskMaterial    = "Отправь исходник: видео файлом И короткое описание текстом.\n" +
		"Можно в любом порядке, двумя сообщениями."
	TextMaterialNeedNote  = "Видео получил. Теперь пришли короткое описание исходника текстом."
	TextMaterialNeedVideo = "Описание получил. Теперь пришли само видео файлом."
	TextDayOneStarted     = "✅ Принято. *День 1* стартовал.\n" +
		"Видео №1 — тестируем хук и удержание.\nВыложи в течение 24 часов."

	// Day loop prompts
	TextAskDayLinkFmt  = "Ок. Пришли ссылку на опубликованное видео (День %d)."
	TextAskViews       = "Просмотры (числом):"
	TextAskLikes       = "Лайки (числом):"
	TextAskComments    = "Комментарии (числом):"
	TextAskFollows     = "Подписки/переходы (если нет — 0):"
	TextStatsSavedFmt  = "✅ Сохранили статистику (День %d).\n\n*День %d* стартовал.\nНовое видео — следующая вариация формата/хука.\nВыложи в течение 24 часов."
	TextReminderDayFmt = "Напоминание: идёт *день %d* теста. Выложи ролик и пришли статистику, чтобы не терять темп."

	// Lux funnel prompts
	TextAskLuxGoal   = "Lux: какая цель? (заявки / продажи / бренд)"
	TextAskLuxVolume = "Сколько роликов в месяц нужно? (10/20/30)"
	TextAskLuxLink   = "Ссылка на TikTok аккаунт:"

	// Retry prompts. Each names the expected input shape so an invalid answer
	// is never dropped silently.
	TextRetryNiche     = "Напиши нишу текстом или выбери кнопкой ниже."
	TextRetryLink      = "Нужна ссылка текстом, одним сообщением. Голосовые и медиа тут не подойдут."
	TextRetryGoal      = "Напиши цель текстом или выбери кнопкой ниже."
	TextRetryMaterial  = "Нужны видео файлом и описание текстом. Пришли одно из двух."
	TextRetryViews     = "Введи число просмотров."
	TextRetryLikes     = "Введи число лайков."
	TextRetryComments  = "Введи число комментариев."
	TextRetryFollows   = "Введи число (можно 0)."
	TextRetryLuxGoal   = "Напиши цель текстом."
	TextRetryLuxVolume = "Введи 10, 20 или 30."
	TextRetryLuxLink   = "Пришли ссылку на аккаунт текстом."

	// Fallbacks
	TextMenuFallback  = "Сформулируй запрос через меню — так я точно пойму, что нужно."
	TextNoActiveTest  = "Активного теста нет. Начни бесплатный тест через меню."
	TextInternalError = "Что-то пошло не так на нашей стороне. Попробуй ещё раз через минуту."
)

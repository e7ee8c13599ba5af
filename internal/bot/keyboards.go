package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/pricing"
)

// Данные callback-кнопок. Плоский словарь, обрабатывается одним switch.
const (
	cbMainMenu   = "main_menu"
	cbFlowLk     = "flow_lk"
	cbInfoPrices = "info_prices"
	cbFlowSignup = "flow_signup"
	cbLkReferral = "lk_referral"
	cbLkPickup   = "lk_pickup"
	cbLkExtend   = "lk_extend"
	cbBindPhone  = "bind_phone"
)

const (
	mainMenuText = "🛞 <b>Отель Шин</b> — сезонное хранение шин в Крыму.\n\n" +
		"Сдайте комплект на хранение и забудьте о нём до следующего сезона. " +
		"Выберите действие:"

	menuPromptText = "Не понял команду. Пожалуйста, воспользуйтесь кнопками меню 👇"

	askPhoneText    = "📞 Укажите ваш номер телефона:"
	askCarText      = "🚗 Укажите номер или марку автомобиля:"
	askDistrictText = "📍 Укажите район или адрес для забора шин:"

	signupDoneText = "✅ Спасибо! Заявка принята.\n\n" +
		"Менеджер свяжется с вами в ближайшее время для уточнения деталей."

	askPickupDateText = "🚚 Укажите желаемую дату вывоза шин (например, 25.12.2026):"
	pickupDoneText    = "✅ Заявка на вывоз принята. Менеджер свяжется с вами для подтверждения."
	extendDoneText    = "✅ Заявка на продление хранения принята. Менеджер свяжется с вами."

	bindPhoneText = "Чтобы войти в личный кабинет, поделитесь номером телефона кнопкой ниже. " +
		"Мы найдём ваш договор по номеру."

	notLinkedText = "ℹ️ Ваш аккаунт ещё не привязан к договору хранения.\n\n" +
		"Поделитесь номером телефона, и мы найдём ваш договор."
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Личный кабинет", cbFlowLk),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Сдать шины на хранение", cbFlowSignup),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Цены", cbInfoPrices),
		),
	)
}

func lkKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚚 Заказать вывоз", cbLkPickup),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Продлить", cbLkExtend),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Пригласить друга", cbLkReferral),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", cbMainMenu),
		),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", cbMainMenu),
		),
	)
}

func notLinkedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 Привязать номер", cbBindPhone),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", cbMainMenu),
		),
	)
}

func contactRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Поделиться номером"),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// pricesText собирает прайс из таблицы движка расчёта, чтобы бот и CRM
// всегда показывали одни и те же цифры.
func pricesText() string {
	diameters := make([]string, 0, len(pricing.PricePerSetByDiameter))
	for d := range pricing.PricePerSetByDiameter {
		diameters = append(diameters, d)
	}
	sort.Slice(diameters, func(i, j int) bool {
		a, _ := strconv.Atoi(diameters[i])
		b, _ := strconv.Atoi(diameters[j])
		return a < b
	})

	var sb strings.Builder
	sb.WriteString("💰 <b>Цены на хранение</b> (комплект 4 шины, в месяц):\n\n")
	for _, d := range diameters {
		fmt.Fprintf(&sb, "R%s — %d ₽\n", d, pricing.PricePerSetByDiameter[d])
	}
	fmt.Fprintf(&sb, "\nХранение на дисках: +%d ₽/мес за комплект.\n", pricing.RimSurchargePerSet)
	fmt.Fprintf(&sb, "Мойка комплекта: %d ₽. Упаковка: %d ₽. Вывоз — бесплатно.", pricing.WashPrice, pricing.PackingPrice)
	return sb.String()
}

// lkText — карточка договора в личном кабинете.
func lkText(c *models.Client) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>Личный кабинет</b>\n\n")
	fmt.Fprintf(&sb, "Договор: <b>%s</b>\n", c.Contract)
	if c.Name != "" {
		fmt.Fprintf(&sb, "Клиент: %s\n", c.Name)
	}
	if c.CarNumber != "" {
		fmt.Fprintf(&sb, "Авто: %s\n", c.CarNumber)
	}
	if c.TireSize != "" {
		fmt.Fprintf(&sb, "Шины: %s", c.TireSize)
		if c.BrandModel != "" {
			fmt.Fprintf(&sb, " (%s)", c.BrandModel)
		}
		sb.WriteString("\n")
	}
	if c.EndDate != "" {
		fmt.Fprintf(&sb, "Хранение до: <b>%s</b>\n", c.EndDate)
	}
	if c.Debt > 0 {
		fmt.Fprintf(&sb, "\n⚠️ Задолженность: %d ₽", c.Debt)
	}
	return sb.String()
}

func referralText(botUsername string, chatID int64) string {
	link := fmt.Sprintf("https://t.me/%s?start=ref_%d", botUsername, chatID)
	return "🎁 <b>Приведи друга</b>\n\n" +
		"Отправьте другу ссылку ниже. Когда он сдаст шины на хранение, " +
		"вы оба получите скидку на месяц.\n\n" + link
}

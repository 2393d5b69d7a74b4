package report

import (
	"time"

	"shift_report_bot/internal/domain/workflow"
)

func renderShiftOpen(r *renderer, personName string, at time.Time) {
	r.header("📝<b>Открытие смены</b>", personName, at)

	r.check("Коньки перенесены с сушилки", "skates_dried")
	r.defect("Есть дефекты у коньков", "skate_defects")
	r.check("Шнурки заправлены", "laces")
	r.check("Есть одноразовые шапочки и носки", "hats_and_socks")
	r.defect("Есть дефекты у пингвинов", "penguin_defects")
	r.defect("Есть дефекты у ящиков хранения", "box_defects")
	r.check("Шлемы и защита на месте", "protection")
	r.check("Музыка включена", "music")
	r.check("Павильон и зона проката чистые", "zone_clean")

	ice, _ := r.value("ice_condition")
	if ice.Text == workflow.ChoiceGood {
		r.linef("Состояние льда: <em>хорошее🟢</em>")
	} else {
		r.linef("Состояние льда: <em>плохое🔴</em>")
	}

	r.photos("Фото сотрудника", "employee_photo")
	r.photos("Фото рабочего места", "place_photo")
	r.photosIf("skate_defects", "Дефекты у коньков", "skate_defects_photo")
	r.photosIf("penguin_defects", "Дефекты у пингвинов", "penguin_defects_photo")
	r.photosIf("box_defects", "Дефекты у ящиков хранения", "box_defects_photo")
}

func renderDailyCheck(r *renderer, personName string, at time.Time) {
	r.header("📔<b>Дневная сверка</b>", personName, at)

	r.check("Количество оплат совпадает с количеством посетителей", "payments_match")
	r.defect("Есть дефекты у коньков", "skate_defects")
	r.linef("Продано билетов: <em>%s</em>", r.text("tickets_sold"))
	r.linef("Сумма за билеты: <em>%s руб.</em>", r.text("ticket_revenue"))
	r.blank()

	if r.yes("urgent_issues") {
		r.linef("Срочные вопросы: <b>%sНужно срочно связаться с сотрудником%s</b>", warn, warn)
	} else {
		r.linef("Срочные вопросы: <em>нет</em>")
	}

	if r.yes("complaints") {
		r.linef("Жалобы и предложения посетителей:")
		r.linef("<em>%s</em>", r.text("complaints_text"))
	} else {
		r.linef("Жалобы и предложения посетителей: <em>нет</em>")
	}

	r.photos("Фото рабочего места", "place_photo")
	r.photosIf("skate_defects", "Дефекты у коньков", "skate_defects_photo")
}

func renderShiftClose(r *renderer, personName string, at time.Time) {
	r.header("📝<b>Закрытие смены</b>", personName, at)

	r.check("Дезинфекция проведена", "disinfection")
	r.check("Коньки поставлены на сушку", "skates_on_dryer")
	r.defect("Есть дефекты у коньков", "skate_defects")
	r.check("Есть одноразовые шапочки и носки", "hats_and_socks")
	r.defect("Есть дефекты у защиты или шлемов", "protection_defects")
	r.check("Музыка выключена", "music_off")
	r.check("Павильон и зона проката чистые", "zone_clean")
	r.check("Павильон закрыт", "pavilion_closed")
	r.blank()

	r.linef("Наличные: <em>%s</em>", r.text("cash"))
	r.linef("Безнал: <em>%s</em>", r.text("card"))
	r.linef("QR-код: <em>%s</em>", r.text("qr"))
	r.linef("Выручка за день: <em>%s руб.</em>", r.text("revenue"))
	r.blank()

	r.linef("Посетителей за день: <em>%s</em>", r.text("visitors"))
	r.linef("Количество чеков за день: <em>%s</em>", r.text("receipts_count"))
	benefitsSkipped := false
	if r.yes("benefits") {
		r.linef("Льготники: <em>да</em>")
		v, _ := r.value("benefits_photo")
		benefitsSkipped = v.Kind == workflow.ValueSkipped
	} else {
		r.linef("Льготники: <em>нет</em>")
	}
	if benefitsSkipped {
		r.linef("%sЛьготники были, но фото удостоверений нет%s", warn, warn)
	}
	r.blank()

	r.linef("Зарплаты сотрудников:")
	r.linef("<em>%s</em>", r.text("salaries"))

	r.photos("Необходимые чеки", "receipts_photo")
	if r.yes("benefits") && !benefitsSkipped {
		r.photos("Удостоверения льготников", "benefits_photo")
	}
	r.photosIf("skate_defects", "Дефекты у коньков", "skate_defects_photo")
	r.photosIf("protection_defects", "Дефекты у защиты или шлемов", "protection_defects_photo")
}

func renderCashDeposit(r *renderer, personName string, at time.Time) {
	r.header("💰<b>Инкассация</b>", personName, at)

	if !r.yes("has_deposit") {
		r.linef("%sИнкассации нет!", warn)
		return
	}
	r.linef("Сумма инкассации: <em>%s руб.</em>", r.text("cash"))
	r.linef("Дата инкассации: <em>%s</em>", r.text("deposit_date"))

	r.photos("Фото необходимых чеков", "receipt_photo")
}

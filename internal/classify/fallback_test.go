package classify

import (
	"testing"

	"github.com/hyperifyio/papercheck/internal/role"
)

const (
	abstractRU1 = "В статье рассматривается процесс сушки зернистых материалов в аппаратах кипящего слоя. " +
		"Представлены данные экспериментального исследования кинетики сушки и предложена математическая модель процесса, " +
		"позволяющая рассчитать параметры сушильного оборудования."
	abstractRU2 = "Показано, что предложенная модель адекватно описывает кинетику процесса сушки зернистых материалов " +
		"в аппаратах кипящего слоя и может применяться при проектировании сушильного оборудования."
	abstractEN = "The article presents a mathematical model of the drying process of granular materials in a fluidized bed " +
		"apparatus, which makes it possible to calculate the main parameters of the equipment."
)

func TestFallback_English(t *testing.T) {
	st := NewState(0)
	cases := []struct {
		text string
		want role.Role
	}{
		{"Modeling of heat transfer in chemical reactors", role.TitleEN},
		{"Mendeleev University of Chemical Technology, Moscow, Russia", role.WorkplaceEN},
		{abstractEN, role.AbstractEN},
		{"heat, mass, flux, kettle", role.KeywordsEN},
		{"Granular materials are dried", role.BodyText},
	}
	for _, c := range cases {
		if got := Fallback(c.text, true, st); got != c.want {
			t.Fatalf("Fallback(%q)=%s want %s", c.text, got, c.want)
		}
	}
}

func TestFallback_EnglishRespectsFlags(t *testing.T) {
	st := NewState(0)
	st.MarkAssigned(role.TitleEN)
	st.MarkAssigned(role.AbstractEN)
	st.MarkAssigned(role.KeywordsEN)
	for _, text := range []string{"Modeling of heat transfer in chemical reactors", abstractEN, "heat, mass, flux, kettle"} {
		if got := Fallback(text, true, st); got != role.BodyText {
			t.Fatalf("Fallback(%q)=%s want body text once assigned", text, got)
		}
	}
}

func TestFallback_Russian(t *testing.T) {
	st := NewState(0)
	cases := []struct {
		text string
		want role.Role
	}{
		{"301670, Новомосковск", role.AuthorInfoRU},
		{"ivanov@mail.ru", role.AuthorInfoRU},
		{abstractRU1, role.AbstractRU},
		{"сушка, кипящий слой, кинетика", role.KeywordsRU},
		{"Процесс сушки протекает в три периода", role.BodyText},
	}
	for _, c := range cases {
		if got := Fallback(c.text, false, st); got != c.want {
			t.Fatalf("Fallback(%q)=%s want %s", c.text, got, c.want)
		}
	}
}

func TestFallback_RussianAbstractRejectsStructureWords(t *testing.T) {
	text := "Введение. " + abstractRU1
	if got := Fallback(text, false, NewState(0)); got == role.AbstractRU {
		t.Fatalf("structure words must block the abstract rule")
	}
}

package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
)

// massForm holds the PSI-MOD mass search inputs. The huh form writes into
// the fields through pointers, so massForm is always used by pointer.
type massForm struct {
	Mass     string
	Accuracy string
	Type     model.MassType

	form  *huh.Form
	width int
}

func newMassForm(mass string, accuracy float64, massType model.MassType) *massForm {
	if !massType.IsValid() {
		massType = model.MassDiffMono
	}
	f := &massForm{
		Mass:     mass,
		Accuracy: strconv.FormatFloat(accuracy, 'f', -1, 64),
		Type:     massType,
		width:    40,
	}
	f.reset()
	return f
}

func parseNumber(notice *lookup.NoticeError) func(string) error {
	return func(s string) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return notice
		}
		return nil
	}
}

func validateAccuracy(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return lookup.ErrAccuracyNotNumber
	}
	if v < 0 {
		return lookup.ErrAccuracyNegative
	}
	return nil
}

// reset builds a fresh form over the current values.
func (f *massForm) reset() tea.Cmd {
	options := make([]huh.Option[model.MassType], len(model.AllMassTypes))
	for i, t := range model.AllMassTypes {
		options[i] = huh.NewOption(string(t), t)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("mass").
				Title("Modification Mass").
				Placeholder("e.g. 79.966").
				Value(&f.Mass).
				Validate(parseNumber(lookup.ErrMassNotNumber)),
			huh.NewInput().
				Key("accuracy").
				Title("Accuracy (±)").
				Value(&f.Accuracy).
				Validate(validateAccuracy),
			huh.NewSelect[model.MassType]().
				Key("type").
				Title("Mass Type").
				Options(options...).
				Value(&f.Type),
		),
	).
		WithShowHelp(false).
		WithTheme(huh.ThemeDracula()).
		WithWidth(f.width)
	return f.form.Init()
}

// Query validates the inputs the same way the robot mode does.
func (f *massForm) Query() (lookup.MassQuery, error) {
	return lookup.ParseMassQuery(f.Mass, f.Accuracy, string(f.Type))
}

// Update forwards msg to the form. submitted is set once the last field was
// confirmed.
func (f *massForm) Update(msg tea.Msg) (submitted bool, cmd tea.Cmd) {
	next, cmd := f.form.Update(msg)
	if form, ok := next.(*huh.Form); ok {
		f.form = form
	}
	return f.form.State == huh.StateCompleted, cmd
}

func (f *massForm) View() string {
	return f.form.View()
}

func (f *massForm) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	f.width = width
	f.form = f.form.WithWidth(width)
}

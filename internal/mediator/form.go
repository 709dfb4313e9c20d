package mediator

import "fmt"

// FormOptions holds the form's button actions.
type FormOptions struct {
	// OnOK receives the field values when OK is clicked.
	OnOK func(name, email string)
	// OnCancel runs when Cancel is clicked.
	OnCancel func()
}

// Form is a name/email form with OK and Cancel buttons. OK starts disabled
// and is enabled only while both fields are filled in.
type Form struct {
	Name   *Text
	Email  *Text
	OK     *Button
	Cancel *Button

	mediator *Mediator
}

// NewForm builds the widgets and the mediator that governs them.
func NewForm(opts FormOptions) *Form {
	f := &Form{
		Name:   NewText("name", ""),
		Email:  NewText("email", ""),
		OK:     NewButton("ok", "OK"),
		Cancel: NewButton("cancel", "Cancel"),
	}
	f.mediator = New(
		[]*Text{f.Name, f.Email},
		f.OK,
		WithAction(f.OK, func() {
			if opts.OnOK != nil {
				opts.OnOK(f.Name.Value(), f.Email.Value())
			}
		}),
		WithAction(f.Cancel, func() {
			if opts.OnCancel != nil {
				opts.OnCancel()
			}
		}),
	)
	return f
}

// Mediator returns the form's mediator.
func (f *Form) Mediator() *Mediator { return f.mediator }

func (f *Form) String() string {
	return fmt.Sprintf("%s %s %s %s", f.Name, f.Email, f.OK, f.Cancel)
}

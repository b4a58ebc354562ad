package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/cardinality"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Fill walks the visible controls of f in document order and prompts for
// each, following conditions and repetition as they change. It then submits
// f; validation issues are reported and the offending controls asked again.
// The submitted record is returned serialized in the output format.
func (r *Renderer) Fill(ctx context.Context, f *form.Form) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if f == nil {
		return nil, errors.New("tui: form is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if err := r.promptLanguage(ctx, f); err != nil {
		return nil, err
	}

	s := &session{r: r, done: make(map[*form.Form]map[tree.NodeID]bool)}
	for attempt := 1; ; attempt++ {
		if err := s.walk(ctx, f, ""); err != nil {
			return nil, err
		}
		data, err := f.Submit(ctx)
		var invalid *capture.ValidationError
		if errors.As(err, &invalid) {
			for _, issue := range invalid.Issues {
				_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, issue.Field, issue.Message))
			}
			if r.maxAttempts > 0 && attempt >= r.maxAttempts {
				return nil, fmt.Errorf("%w: %w", ErrTooManyAttempts, err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		values := map[string]any(data)
		if r.submitTransformer != nil {
			values, err = r.submitTransformer(values)
			if err != nil {
				return nil, fmt.Errorf("tui: submit transformer: %w", err)
			}
		}
		return r.serialize(values)
	}
}

func (r *Renderer) promptLanguage(ctx context.Context, f *form.Form) error {
	langs := f.Structure().Languages()
	if !r.askLanguage || len(langs) < 2 {
		return nil
	}
	names := make([]string, len(langs))
	for i, lang := range langs {
		names[i] = localize.DisplayName(lang)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Language",
		Options:      names,
		DefaultIndex: slices.Index(langs, f.Language()),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(langs) {
		return nil
	}
	return f.SetLanguage(langs[idx])
}

type session struct {
	r    *Renderer
	done map[*form.Form]map[tree.NodeID]bool
}

// walk prompts every pending step of one form level. The tree is read again
// after each answer since answers may hide, show, add or remove controls.
func (s *session) walk(ctx context.Context, f *form.Form, path string) error {
	done := s.done[f]
	if done == nil {
		done = make(map[tree.NodeID]bool)
		s.done[f] = done
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := f.Tree()
		step, ok := s.next(f, t, done)
		if !ok {
			return nil
		}
		n := t.Node(step)
		if n.Kind == tree.KindButton {
			if err := s.offerInstance(ctx, f, t, n, done); err != nil {
				return err
			}
			continue
		}
		if err := s.control(ctx, f, t, n, path); err != nil {
			return err
		}
		done[step] = true
	}
}

// next returns the first visible step still to do: a control container not
// yet answered or holding an invalid value, or an add trigger not declined.
func (s *session) next(f *form.Form, t *tree.Tree, done map[tree.NodeID]bool) (tree.NodeID, bool) {
	return tree.First(t, t.Root(), func(n *tree.Node) bool {
		isControl := n.Kind == tree.KindContainer && n.HasClass(builder.ClassControl)
		isTrigger := n.Kind == tree.KindButton && n.Attr(cardinality.AttrTrigger) == cardinality.TriggerAdd
		if (!isControl && !isTrigger) || !tree.Visible(t, n.ID) {
			return false
		}
		if !done[n.ID] {
			return true
		}
		if !isControl {
			return false
		}
		return s.invalid(f, t, n)
	})
}

func (s *session) invalid(f *form.Form, t *tree.Tree, container *tree.Node) bool {
	value, ok := capture.Input(t, container.ID, container.Attr(builder.AttrField))
	if !ok {
		return false
	}
	if value.Invalid {
		return true
	}
	if value.Kind != tree.KindReference {
		return false
	}
	sub, ok := f.Subform(value.ID)
	if !ok {
		return false
	}
	st := sub.Tree()
	return len(tree.Find(st, st.Root(), func(n *tree.Node) bool { return n.Invalid })) > 0
}

func (s *session) offerInstance(ctx context.Context, f *form.Form, t *tree.Tree, trigger *tree.Node, done map[tree.NodeID]bool) error {
	field := t.Node(trigger.Parent).Attr(cardinality.AttrManager)
	add, err := s.r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Add another %s?", fieldLabel(f, field)),
	})
	if err != nil {
		return err
	}
	if !add {
		done[trigger.ID] = true
		return nil
	}
	if _, err := f.Add(ctx, trigger.Parent); err != nil {
		return err
	}
	return nil
}

type description struct {
	label, help string
}

// describe reads the texts of a control container as the form shows them.
func describe(t *tree.Tree, container tree.NodeID) description {
	var d description
	var unit string
	tree.Walk(t, container, func(n *tree.Node) bool {
		if n.Slot == nil {
			return true
		}
		switch {
		case n.Slot.Kind == tree.SlotControl && n.Slot.Part == "label":
			d.label = n.Text
		case n.Slot.Kind == tree.SlotControl && n.Slot.Part == "information":
			d.help = n.Text
		case n.Slot.Kind == tree.SlotUnit:
			unit = n.Text
		}
		return true
	})
	if d.label == "" {
		d.label = t.Node(container).Attr(builder.AttrField)
	}
	if unit != "" {
		d.label += " (" + unit + ")"
	}
	return d
}

func fieldLabel(f *form.Form, field string) string {
	control, ok := f.Structure().Control(field)
	if !ok {
		return field
	}
	if tr, ok := control.Translation(f.Language()); ok && tr.Label != "" {
		return strings.TrimSuffix(strings.TrimSpace(tr.Label), ":")
	}
	return field
}

func (s *session) control(ctx context.Context, f *form.Form, t *tree.Tree, container *tree.Node, path string) error {
	field := container.Attr(builder.AttrField)
	n, ok := capture.Input(t, container.ID, field)
	if !ok {
		return nil
	}
	d := describe(t, container.ID)
	if n.Invalid && n.Message != "" {
		_ = s.r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", s.r.theme.ErrorPrefix, path+field, n.Message))
	}

	switch n.Kind {
	case tree.KindReference:
		sub, ok := f.Subform(n.ID)
		if !ok {
			return nil
		}
		_ = s.r.driver.Info(ctx, s.r.theme.InfoPrefix+d.label)
		return s.walk(ctx, sub, path+field+".")
	case tree.KindSelect:
		return s.selectValue(ctx, f, t, n, d)
	case tree.KindWidget:
		value, err := s.r.driver.Input(ctx, InputConfig{Message: d.label, Help: d.help})
		if err != nil || value == "" {
			return err
		}
		return f.SetWidget(n.ID, value)
	}

	switch inputType(n) {
	case "checkbox":
		checked, err := s.r.driver.Confirm(ctx, ConfirmConfig{Message: d.label, Default: n.Checked, Help: d.help})
		if err != nil {
			return err
		}
		return f.SetChecked(n.ID, checked)
	case "file":
		return s.files(ctx, f, n, d)
	}

	cfg := InputConfig{
		Message:   d.label,
		Default:   n.Value(),
		Help:      d.help,
		Validator: validator(f, field, n.Required),
	}
	var value string
	var err error
	if n.HasClass(localize.ClassFlagged) {
		value, err = s.r.driver.Password(ctx, cfg)
	} else {
		value, err = s.r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	if value == "" {
		if removed, err := s.offerRemoval(ctx, f, t, n, field); removed || err != nil {
			return err
		}
	}
	return f.SetValue(n.ID, value)
}

func (s *session) selectValue(ctx context.Context, f *form.Form, t *tree.Tree, n *tree.Node, d description) error {
	var labels, values []string
	for _, child := range n.Children {
		opt := t.Node(child)
		if opt == nil {
			continue
		}
		text := opt.Text
		if opt.Attr("value") == "" && text == "" {
			text = "-"
		}
		labels = append(labels, text)
		values = append(values, opt.Attr("value"))
	}

	if _, multiple := n.Attrs["multiple"]; multiple {
		var defaults []int
		for _, v := range n.Values {
			if idx := slices.Index(values, v); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := s.r.driver.MultiSelect(ctx, SelectConfig{Message: d.label, Options: labels, Defaults: defaults, Help: d.help})
		if err != nil {
			return err
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(values) {
				selected = append(selected, values[idx])
			}
		}
		return f.SetValue(n.ID, selected...)
	}

	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      d.label,
		Options:      labels,
		DefaultIndex: slices.Index(values, n.Value()),
		Help:         d.help,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return f.SetValue(n.ID)
	}
	return f.SetValue(n.ID, values[idx])
}

func (s *session) files(ctx context.Context, f *form.Form, n *tree.Node, d description) error {
	help := "comma separated file paths"
	if accept := n.Attr("accept"); accept != "" {
		help += " (" + accept + ")"
	}
	raw, err := s.r.driver.Input(ctx, InputConfig{Message: d.label, Help: help})
	if err != nil {
		return err
	}
	var uploads []form.Upload
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		uploads = append(uploads, form.Upload{
			Name:      filepath.Base(path),
			MediaType: mime.TypeByExtension(filepath.Ext(path)),
			Open:      openFunc(s.r.open, path),
		})
	}
	if len(uploads) == 0 {
		return nil
	}
	logger.Verbose("tui: attaching", len(uploads), "file(s) to", n.Attr("name"))
	return f.AttachFiles(n.ID, uploads...)
}

func openFunc(open Opener, path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return open(path) }
}

// offerRemoval asks to drop an added instance left empty.
func (s *session) offerRemoval(ctx context.Context, f *form.Form, t *tree.Tree, n *tree.Node, field string) (bool, error) {
	instance, ok := tree.Closest(t, n.ID, tree.ByClass(cardinality.ClassInstance))
	if !ok {
		return false, nil
	}
	remove, err := s.r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Remove this %s?", fieldLabel(f, field)),
	})
	if err != nil || !remove {
		return false, err
	}
	return true, f.Remove(t.Node(instance).Attr(cardinality.AttrInstance))
}

// validator mirrors the submit checks so the terminal rejects bad input
// early.
func validator(f *form.Form, field string, required bool) func(string) error {
	control, _ := f.Structure().Control(field)
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if required {
				return errors.New(capture.MessageRequired)
			}
			return nil
		}
		switch control.Type {
		case schema.TypeNumeric:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return errors.New(capture.MessageNumber)
			}
		case schema.TypeDate:
			if _, err := time.Parse(capture.DateLayout, value); err != nil {
				return errors.New(capture.MessageDate)
			}
		}
		return nil
	}
}

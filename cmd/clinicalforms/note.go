package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/format"
	"github.com/mespms/clinicalforms/pkg/notes"
	"github.com/mespms/clinicalforms/pkg/renderers/tui"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Create, edit and sign clinical notes on the backend",
	}
	cmd.AddCommand(
		newNoteCreateCmd(a),
		newNoteListCmd(a),
		newNoteShowCmd(a),
		newNoteEditCmd(a),
		newNoteSignCmd(a),
		newNoteLogCmd(a),
	)
	return cmd
}

func newNoteCreateCmd(a *app) *cobra.Command {
	var (
		patient     int64
		template    int64
		appointment int64
		date        string
		answersPath string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft note for the signed-in practitioner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readAnswers(answersPath)
			if err != nil {
				return err
			}
			if content == nil {
				content = map[string]any{}
			}
			req := notes.CreateRequest{
				Patient:      patient,
				Practitioner: a.user().ID,
				Template:     template,
				Date:         firstNonEmpty(date, time.Now().Format(time.DateOnly)),
				Content:      content,
			}
			if appointment > 0 {
				req.Appointment = &appointment
			}
			if err := req.Validate(); err != nil {
				printFieldErrors(a, format.FieldErrors(err))
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			note, err := c.Notes.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created note %d (%s v%d)\n", note.ID, firstNonEmpty(note.TemplateName, "template"), note.TemplateVersion)
			return nil
		},
	}
	cmd.Flags().Int64Var(&patient, "patient", 0, "patient id")
	cmd.Flags().Int64Var(&template, "template", 0, "template id")
	cmd.Flags().Int64Var(&appointment, "appointment", 0, "appointment id")
	cmd.Flags().StringVar(&date, "date", "", "note date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&answersPath, "answers", "", "JSON answer map to start from")
	return cmd
}

func newNoteListCmd(a *app) *cobra.Command {
	var (
		patient int64
		mine    bool
		state   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q notes.Query
			if patient > 0 {
				q.Patient = &patient
			}
			if mine {
				id := a.user().ID
				q.Practitioner = &id
			}
			yes, no := true, false
			switch strings.ToLower(state) {
			case "":
			case "signed":
				q.IsSigned = &yes
			case "unsigned":
				q.IsSigned = &no
			case "draft":
				q.IsDraft = &yes
			default:
				return fmt.Errorf("unknown state %q (signed, unsigned, draft)", state)
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			list, err := c.Notes.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			for _, n := range list {
				fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\t%s\n", n.ID, n.DisplayDate(), n.PatientName, n.TemplateName, n.Status())
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&patient, "patient", 0, "only notes of this patient")
	cmd.Flags().BoolVar(&mine, "mine", false, "only notes of the signed-in practitioner")
	cmd.Flags().StringVar(&state, "state", "", "signed, unsigned or draft")
	return cmd
}

func newNoteShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			note, err := c.Notes.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(a.out, note)
		},
	}
}

func newNoteEditCmd(a *app) *cobra.Command {
	var (
		answersPath string
		draft       bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note's answers in the terminal, or from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor, err := a.openEditor(ctx, args[0])
			if err != nil {
				return err
			}

			answers, err := readAnswers(answersPath)
			if err != nil {
				return err
			}
			if answers == nil {
				if answers, err = a.promptAnswers(ctx, editor); err != nil {
					return err
				}
			}
			if err := editor.Replace(answers); err != nil {
				return err
			}

			if draft {
				saved, err := editor.Autosave(ctx)
				if err != nil {
					return err
				}
				if saved {
					fmt.Fprintf(a.out, "draft saved at %s\n", editor.LastSavedLabel())
				}
				return nil
			}
			if _, err := editor.Save(ctx); err != nil {
				printFormErrors(a, editor)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "replace the answers with this JSON map instead of prompting")
	cmd.Flags().BoolVar(&draft, "draft", false, "store as a draft without validating")
	return cmd
}

func newNoteSignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <id>",
		Short: "Validate, save and sign a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.openEditor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			note, err := editor.Sign(cmd.Context())
			if err != nil {
				printFormErrors(a, editor)
				return err
			}
			if note.SignedAt != nil {
				fmt.Fprintf(a.out, "note %d signed %s\n", note.ID, note.SignedAt.Local().Format(format.DateTimeLayout))
			}
			return nil
		},
	}
}

func newNoteLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log <id>",
		Short: "Print a note's audit log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			entries, err := c.Notes.AuditLog(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(a.out, entries)
		},
	}
}

func (a *app) openEditor(ctx context.Context, rawID string) (*notes.Editor, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return notes.Open(ctx, id, a.user(), c.Notes, c.Templates,
		notes.WithNotifier(notes.LogNotifier{Logger: a.logger}),
		notes.WithLogger(a.logger),
		notes.WithFormOptions(a.formOptions()...),
	)
}

// promptAnswers runs the terminal form prefilled with the note's answers.
func (a *app) promptAnswers(ctx context.Context, editor *notes.Editor) (map[string]any, error) {
	tpl := editor.Template()
	out, err := a.promptRenderer(tpl.Structure, tui.OutputFormatJSON, 0).Render(ctx, tpl.Structure, editor.RenderOptions())
	if err != nil {
		if errors.Is(err, tui.ErrReadOnly) {
			return nil, notes.ErrSigned
		}
		printViolations(a, err)
		return nil, err
	}
	var answers map[string]any
	if err := json.Unmarshal(out, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func printFormErrors(a *app, editor *notes.Editor) {
	errs := editor.Errors()
	for _, path := range errs.Paths() {
		for _, msg := range errs[path] {
			fmt.Fprintf(a.errOut, "  %s: %s\n", path, msg)
		}
	}
	for _, msg := range editor.FormErrors() {
		fmt.Fprintf(a.errOut, "  %s\n", msg)
	}
}

func printFieldErrors(a *app, fields map[string][]string) {
	for path, msgs := range fields {
		for _, msg := range msgs {
			fmt.Fprintf(a.errOut, "  %s: %s\n", path, msg)
		}
	}
}

// Package app exposes the mutation-operation contract to clients: it
// validates vocabulary edits, forwards them to the reconciliation engine,
// and serves the derived views over HTTP.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boxinventory/api/internal/engine"
	"boxinventory/api/internal/export"
	"boxinventory/api/internal/inventory"
	"boxinventory/api/internal/views"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Archiver stores a rendered export outside the database.
type Archiver interface {
	Store(ctx context.Context, name string, payload []byte) error
}

// Service validates edits before they reach the snapshot. The pure mutation
// functions in the inventory package trust their caller; this is the caller.
type Service struct {
	engine   *engine.Engine
	pinger   Pinger   // may be nil
	archiver Archiver // may be nil; archiving then reports unavailable
}

func New(eng *engine.Engine, pinger Pinger, archiver Archiver) *Service {
	return &Service{engine: eng, pinger: pinger, archiver: archiver}
}

func (s *Service) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.Ping(ctx)
}

func (s *Service) Ready() bool {
	return s.engine.State() == engine.StateReady
}

// Snapshot returns the full application state.
func (s *Service) Snapshot() inventory.Snapshot {
	return s.engine.Snapshot()
}

// BoxView is a box plus its derived display attributes.
type BoxView struct {
	inventory.Box
	Status views.Status `json:"status"`
	Color  string       `json:"color"`
}

// Boxes returns the filtered box list with status and color resolved
// against today.
func (s *Service) Boxes(c views.Criteria) []BoxView {
	today := time.Now()
	boxes := views.Filter(s.engine.Snapshot(), c)
	out := make([]BoxView, len(boxes))
	for i, b := range boxes {
		out[i] = BoxView{Box: b, Status: views.BoxStatus(b, today), Color: views.BoxColor(b, today)}
	}
	return out
}

// Summary returns the weighted aggregation tree.
func (s *Service) Summary() views.Summary {
	return views.Summarize(s.engine.Snapshot())
}

// SaveBox merges the patch into one box.
func (s *Service) SaveBox(id int, patch inventory.BoxPatch) error {
	if err := s.checkBoxID(id); err != nil {
		return err
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.SaveBox(snap, id, patch)
	})
}

// ClearBox resets one box to identity only.
func (s *Service) ClearBox(id int) error {
	if err := s.checkBoxID(id); err != nil {
		return err
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.ClearBox(snap, id)
	})
}

// BulkApply merges the patch into every selected box.
func (s *Service) BulkApply(ids []int, patch inventory.BoxPatch) error {
	if len(ids) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "no boxes selected", nil)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.BulkApply(snap, ids, patch)
	})
}

// BulkClear resets every selected box.
func (s *Service) BulkClear(ids []int) error {
	if len(ids) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "no boxes selected", nil)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.BulkClear(snap, ids)
	})
}

func (s *Service) AddVariety(name string) error {
	return s.addListValue(name, func(snap inventory.Snapshot) []string { return snap.Varieties }, inventory.AddVariety)
}

func (s *Service) RenameVariety(oldName, newName string) error {
	return s.renameListValue(oldName, newName, func(snap inventory.Snapshot) []string { return snap.Varieties }, inventory.RenameVariety)
}

func (s *Service) DeleteVariety(name string) error {
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.DeleteVariety(snap, name) })
}

func (s *Service) AddSorting(name string) error {
	return s.addListValue(name, func(snap inventory.Snapshot) []string { return snap.Sortings }, inventory.AddSorting)
}

func (s *Service) RenameSorting(oldName, newName string) error {
	return s.renameListValue(oldName, newName, func(snap inventory.Snapshot) []string { return snap.Sortings }, inventory.RenameSorting)
}

func (s *Service) DeleteSorting(name string) error {
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.DeleteSorting(snap, name) })
}

func (s *Service) AddFillLevel(name string) error {
	return s.addListValue(name, func(snap inventory.Snapshot) []string { return snap.FillLevels }, inventory.AddFillLevel)
}

func (s *Service) RenameFillLevel(oldName, newName string) error {
	return s.renameListValue(oldName, newName, func(snap inventory.Snapshot) []string { return snap.FillLevels }, inventory.RenameFillLevel)
}

func (s *Service) DeleteFillLevel(name string) error {
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.DeleteFillLevel(snap, name) })
}

func (s *Service) AddTrait(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errNameRequired()
	}
	if traitExistsFold(s.engine.Snapshot(), name) {
		return errDuplicate(name)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.AddTrait(snap, name) })
}

func (s *Service) RenameTrait(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errNameRequired()
	}
	if newName == oldName {
		return nil
	}
	// A case-only rename of the same trait is allowed.
	if !strings.EqualFold(newName, oldName) && traitExistsFold(s.engine.Snapshot(), newName) {
		return errDuplicate(newName)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.RenameTrait(snap, oldName, newName) })
}

func (s *Service) DeleteTrait(name string) error {
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.DeleteTrait(snap, name) })
}

func (s *Service) AddTraitOption(traitName, option string) error {
	option = strings.TrimSpace(option)
	if option == "" {
		return errNameRequired()
	}
	trait, err := s.findTrait(traitName)
	if err != nil {
		return err
	}
	if containsFold(trait.Options, option) {
		return errDuplicate(option)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return inventory.AddTraitOption(snap, traitName, option) })
}

func (s *Service) RenameTraitOption(traitName, oldOption, newOption string) error {
	newOption = strings.TrimSpace(newOption)
	if newOption == "" {
		return errNameRequired()
	}
	if newOption == oldOption {
		return nil
	}
	trait, err := s.findTrait(traitName)
	if err != nil {
		return err
	}
	if containsFold(trait.Options, newOption) {
		return errDuplicate(newOption)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.RenameTraitOption(snap, traitName, oldOption, newOption)
	})
}

func (s *Service) DeleteTraitOption(traitName, option string) error {
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot {
		return inventory.DeleteTraitOption(snap, traitName, option)
	})
}

// WriteCSV renders the current snapshot as a CSV download.
func (s *Service) WriteCSV(w io.Writer) error {
	return export.WriteCSV(w, s.engine.Snapshot())
}

// ArchiveCSV renders the snapshot and stores it in the configured object
// store. Returns the object name.
func (s *Service) ArchiveCSV(ctx context.Context) (string, error) {
	if s.archiver == nil {
		return "", domainError(http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Object storage not configured", nil)
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, s.engine.Snapshot()); err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	name := export.Filename(time.Now())
	if err := s.archiver.Store(ctx, name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("archive export: %w", err)
	}
	return name, nil
}

func (s *Service) addListValue(name string, current func(inventory.Snapshot) []string, apply func(inventory.Snapshot, string) inventory.Snapshot) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errNameRequired()
	}
	if containsFold(current(s.engine.Snapshot()), name) {
		return errDuplicate(name)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return apply(snap, name) })
}

func (s *Service) renameListValue(oldName, newName string, current func(inventory.Snapshot) []string, apply func(inventory.Snapshot, string, string) inventory.Snapshot) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errNameRequired()
	}
	if newName == oldName {
		return nil
	}
	// Folding the whole list also blocks case-only renames of the value
	// itself; that matches how the manage screen always behaved.
	if containsFold(current(s.engine.Snapshot()), newName) {
		return errDuplicate(newName)
	}
	return s.update(func(snap inventory.Snapshot) inventory.Snapshot { return apply(snap, oldName, newName) })
}

func (s *Service) update(mutate func(inventory.Snapshot) inventory.Snapshot) error {
	if err := s.engine.Update(mutate); err != nil {
		return domainError(http.StatusServiceUnavailable, "NOT_READY", "State engine is not ready", nil)
	}
	return nil
}

func (s *Service) checkBoxID(id int) error {
	for _, b := range s.engine.Snapshot().Boxes {
		if b.ID == id {
			return nil
		}
	}
	return domainError(http.StatusNotFound, "UNKNOWN_BOX", fmt.Sprintf("No box with id %d", id), nil)
}

func (s *Service) findTrait(name string) (inventory.TraitDefinition, error) {
	for _, t := range s.engine.Snapshot().CustomTraits {
		if t.Name == name {
			return t, nil
		}
	}
	return inventory.TraitDefinition{}, domainError(http.StatusNotFound, "UNKNOWN_TRAIT", fmt.Sprintf("No trait named %q", name), nil)
}

func traitExistsFold(snap inventory.Snapshot, name string) bool {
	for _, t := range snap.CustomTraits {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func containsFold(values []string, name string) bool {
	for _, v := range values {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func errNameRequired() error {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
}

func errDuplicate(name string) error {
	return domainError(http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("%q already exists", name), nil)
}

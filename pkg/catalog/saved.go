package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/db/models"
)

// SavedFilter is a named filter specification.
type SavedFilter struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Spec        filter.Spec `json:"spec"`
	Query       string      `json:"query"`
}

func (s *Service) SaveFilter(ctx context.Context, name, description string, spec filter.Spec) (SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedFilter{}, fmt.Errorf("saved filter name must not be empty")
	}

	row := &models.SavedFilter{
		Name:        name,
		Query:       spec.Encode(),
		Description: description,
	}
	if err := s.repo.CreateSavedFilter(ctx, row); err != nil {
		return SavedFilter{}, fmt.Errorf("failed to save filter %q: %w", name, err)
	}
	return fromSavedModel(row, spec), nil
}

func (s *Service) SavedFilter(ctx context.Context, name string) (SavedFilter, error) {
	row, err := s.repo.GetSavedFilter(ctx, name)
	if err != nil {
		return SavedFilter{}, fmt.Errorf("failed to get saved filter %q: %w", name, err)
	}

	spec, err := filter.ParseQuery(row.Query)
	if err != nil {
		return SavedFilter{}, fmt.Errorf("saved filter %q has an invalid query: %w", name, err)
	}
	return fromSavedModel(row, spec), nil
}

// SavedFilters lists all saved filters by name. Rows with an unreadable query
// are skipped and logged.
func (s *Service) SavedFilters(ctx context.Context) ([]SavedFilter, error) {
	rows, err := s.repo.ListSavedFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved filters: %w", err)
	}

	out := make([]SavedFilter, 0, len(rows))
	for i := range rows {
		spec, err := filter.ParseQuery(rows[i].Query)
		if err != nil {
			s.log.Warn("Skipping saved filter %q: %v", rows[i].Name, err)
			continue
		}
		out = append(out, fromSavedModel(&rows[i], spec))
	}
	return out, nil
}

func (s *Service) DeleteSavedFilter(ctx context.Context, name string) error {
	if err := s.repo.DeleteSavedFilter(ctx, name); err != nil {
		return fmt.Errorf("failed to delete saved filter %q: %w", name, err)
	}
	return nil
}

func fromSavedModel(row *models.SavedFilter, spec filter.Spec) SavedFilter {
	return SavedFilter{
		Name:        row.Name,
		Description: row.Description,
		Spec:        spec,
		Query:       row.Query,
	}
}

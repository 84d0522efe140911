package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/binderapp/binder-server/internal/errors"
)

func (s *Server) registerVaultRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportVault",
		Method:      http.MethodPost,
		Path:        "/api/v1/vault/export",
		Summary:     "Export all binders to the offline vault",
		Description: "Writes the SQLite vault and the portable JSON export file",
		Tags:        []string{"Vault"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleVaultExport)

	huma.Register(s.api, huma.Operation{
		OperationID: "importVault",
		Method:      http.MethodPost,
		Path:        "/api/v1/vault/import",
		Summary:     "Import binders from the vault export file",
		Description: "Same merge rules as the watched import: newer copies win, archived binders stay archived",
		Tags:        []string{"Vault"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleVaultImport)
}

// === DTOs ===

// VaultExportResponse reports the export outcome.
type VaultExportResponse struct {
	Exported int    `json:"exported" doc:"Number of binders written"`
	Path     string `json:"path" doc:"Export file location on the server"`
}

// VaultExportOutput wraps the export result for Huma.
type VaultExportOutput struct {
	Body VaultExportResponse
}

// VaultImportResponse reports the import outcome.
type VaultImportResponse struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// VaultImportOutput wraps the import result for Huma.
type VaultImportOutput struct {
	Body VaultImportResponse
}

// === Handlers ===

func (s *Server) handleVaultExport(ctx context.Context, input *AuthInput) (*VaultExportOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	if s.services.Vault == nil {
		return nil, apperrors.Unavailable("offline vault is disabled")
	}

	count, err := s.services.Vault.Export(ctx)
	if err != nil {
		return nil, err
	}

	return &VaultExportOutput{Body: VaultExportResponse{
		Exported: count,
		Path:     s.services.Vault.ExportPath(),
	}}, nil
}

func (s *Server) handleVaultImport(ctx context.Context, input *AuthInput) (*VaultImportOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	if s.services.Vault == nil {
		return nil, apperrors.Unavailable("offline vault is disabled")
	}

	result, err := s.services.Vault.ImportFile(ctx, s.services.Vault.ExportPath())
	if err != nil {
		return nil, err
	}

	return &VaultImportOutput{Body: VaultImportResponse{
		Added:   result.Added,
		Updated: result.Updated,
		Skipped: result.Skipped,
	}}, nil
}

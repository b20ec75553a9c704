package settings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Defaults struct {
	AdminPassword string
	CompanyName   string
	RecoveryEmail string
}

var allowedLogoTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

type Service struct {
	repo         Repository
	cache        Cache
	defaults     Defaults
	maxLogoBytes int
}

func NewService(repo Repository, cache Cache, defaults Defaults, maxLogoBytes int) *Service {
	return &Service{repo: repo, cache: cache, defaults: defaults, maxLogoBytes: maxLogoBytes}
}

// All devolve o mapa completo, semeando os valores padrão que faltarem.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		if values, ok := s.cache.Get(ctx); ok {
			return values, nil
		}
	}

	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: leitura: %w", err)
	}
	values := make(map[string]string, len(rows)+3)
	for _, r := range rows {
		values[r.Key] = r.Value
	}

	missing := map[string]string{}
	for k, v := range map[string]string{
		models.SettingAdminPassword: s.defaults.AdminPassword,
		models.SettingRecoveryEmail: s.defaults.RecoveryEmail,
		models.SettingCompanyName:   s.defaults.CompanyName,
	} {
		if _, ok := values[k]; !ok {
			missing[k] = v
			values[k] = v
		}
	}
	if len(missing) > 0 {
		if err := s.repo.Seed(ctx, missing); err != nil {
			return nil, fmt.Errorf("settings: valores padrão: %w", err)
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, values)
	}
	return values, nil
}

// Public esconde a senha do administrador.
func (s *Service) Public(ctx context.Context) (map[string]string, error) {
	values, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if k == models.SettingAdminPassword {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	values, err := s.All(ctx)
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *Service) AdminPassword(ctx context.Context) (string, error) {
	return s.Get(ctx, models.SettingAdminPassword)
}

func (s *Service) RecoveryEmail(ctx context.Context) (string, error) {
	return s.Get(ctx, models.SettingRecoveryEmail)
}

func (s *Service) CompanyName(ctx context.Context) (string, error) {
	return s.Get(ctx, models.SettingCompanyName)
}

// OrderBudget devolve o teto por pedido; ok=false quando não configurado ou zero.
func (s *Service) OrderBudget(ctx context.Context) (decimal.Decimal, bool, error) {
	raw, err := s.Get(ctx, models.SettingOrderBudget)
	if err != nil {
		return decimal.Zero, false, err
	}
	budget, ok := parseBudget(raw)
	return budget, ok, nil
}

// Merge aplica o PATCH: chaves enviadas sobrescrevem, as demais ficam.
func (s *Service) Merge(ctx context.Context, patch map[string]string) (map[string]string, error) {
	if len(patch) == 0 {
		return s.All(ctx)
	}
	for k, v := range patch {
		if k == "" || len(k) > 100 {
			return nil, apperror.Validation("Chave de configuração inválida")
		}
		switch k {
		case models.SettingOrderBudget:
			v = strings.TrimSpace(v)
			if v != "" {
				d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
				if err != nil || d.IsNegative() {
					return nil, apperror.Validation("Limite de gasto inválido")
				}
				v = d.StringFixed(2)
			}
			patch[k] = v
		case models.SettingAdminPassword:
			if strings.TrimSpace(v) == "" {
				return nil, apperror.Validation("Senha do administrador não pode ficar vazia")
			}
		case models.SettingRecoveryEmail:
			patch[k] = strings.TrimSpace(v)
		}
	}

	if err := s.repo.Upsert(ctx, patch); err != nil {
		return nil, fmt.Errorf("settings: gravação: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return s.All(ctx)
}

// SetLogo grava a imagem como data URL em logoUrl.
func (s *Service) SetLogo(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperror.Validation("Arquivo de logo vazio")
	}
	if len(data) > s.maxLogoBytes {
		return "", apperror.Validation(fmt.Sprintf("Logo excede o limite de %d KB", s.maxLogoBytes/1024))
	}
	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "text/xml") || strings.HasPrefix(contentType, "text/plain") {
		if strings.Contains(string(data[:min(len(data), 512)]), "<svg") {
			contentType = "image/svg+xml"
		}
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedLogoTypes[contentType] {
		return "", apperror.Validation("Formato de imagem não suportado")
	}

	url := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if _, err := s.Merge(ctx, map[string]string{models.SettingLogoURL: url}); err != nil {
		return "", err
	}
	return url, nil
}

func parseBudget(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// DecodePatch aceita valores string, número, booleano ou null vindos do JSON.
func DecodePatch(body []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.Validation("Corpo da requisição inválido")
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			out[k] = str
			continue
		}
		text := strings.TrimSpace(string(v))
		if text == "null" {
			text = ""
		}
		if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
			return nil, apperror.Validation(fmt.Sprintf("Valor inválido para %s", k))
		}
		out[k] = text
	}
	return out, nil
}

// Invalidate descarta o cache após escritas feitas fora do serviço.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

package merchants

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxp/merchant-portal/internal/shared"
)

// Source is the remote origin of merchant records.
type Source interface {
	ListMerchants(ctx context.Context) ([]Merchant, error)
	CreateMerchant(ctx context.Context, input NewMerchant) error
}

// Service loads merchant collections through the cache and submits new merchants.
type Service struct {
	source    Source
	cache     *Cache
	logger    *slog.Logger
	validator *validator.Validate
}

// NewService wires a Source with a Cache helper.
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{source: source, cache: cache, logger: logger, validator: v}
}

// Records returns the merchant collection with duplicate UUIDs removed.
func (s *Service) Records(ctx context.Context) ([]Merchant, error) {
	records, err := s.cache.Collection(ctx, func(ctx context.Context) ([]Merchant, error) {
		list, err := s.source.ListMerchants(ctx)
		if err != nil {
			return nil, err
		}
		return Dedupe(list), nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Validate checks a creation payload and returns field errors keyed by form name.
func (s *Service) Validate(input NewMerchant) map[string]string {
	errs := make(map[string]string)
	if err := s.validator.Struct(input); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs["general"] = err.Error()
			return errs
		}
		for _, fieldErr := range fieldErrs {
			errs[fieldErr.Field()] = fieldMessage(fieldErr)
		}
	}
	return errs
}

// Create validates input, submits it upstream and invalidates the cached collection.
func (s *Service) Create(ctx context.Context, input NewMerchant) error {
	if errs := s.Validate(input); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return shared.NewValidationError(fields[0], errs[fields[0]])
	}
	if err := s.source.CreateMerchant(ctx, input); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump merchant cache", slog.Any("error", err))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}

package services

import (
	"errors"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"gorm.io/gorm"
)

// LLMConfigService manages the model endpoints stored in the database. The
// active default row is what the generation client calls.
type LLMConfigService struct {
	db *gorm.DB
}

func NewLLMConfigService(db *gorm.DB) *LLMConfigService {
	return &LLMConfigService{db: db}
}

type CreateLLMConfigRequest struct {
	Name           string  `json:"name" binding:"required"`
	Provider       string  `json:"provider"`
	BaseURL        string  `json:"base_url"`
	APIKey         string  `json:"api_key"`
	Model          string  `json:"model" binding:"required"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	IsDefault      bool    `json:"is_default"`
}

// Default returns the active default config, or any active config when none is
// marked default.
func (s *LLMConfigService) Default() (*models.LLMConfig, error) {
	var config models.LLMConfig
	if err := s.db.Where("is_default = ? AND is_active = ?", true, true).First(&config).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := s.db.Where("is_active = ?", true).Order("id ASC").First(&config).Error; err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// List returns active configs with masked keys, default first.
func (s *LLMConfigService) List() ([]models.LLMConfig, error) {
	var configs []models.LLMConfig
	if err := s.db.Where("is_active = ?", true).Order("is_default DESC, created_at DESC").Find(&configs).Error; err != nil {
		return nil, err
	}
	for i := range configs {
		configs[i].APIKeyMask = configs[i].MaskAPIKey()
	}
	return configs, nil
}

// Create stores a new endpoint. Marking it default clears the previous default.
func (s *LLMConfigService) Create(req *CreateLLMConfigRequest) (*models.LLMConfig, error) {
	if req.Provider == "" {
		req.Provider = "openai"
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4000
	}
	if req.Temperature == 0 {
		req.Temperature = 0.7
	}
	if req.TimeoutSeconds == 0 {
		req.TimeoutSeconds = 45
	}

	config := models.LLMConfig{
		Name:           req.Name,
		Provider:       req.Provider,
		BaseURL:        req.BaseURL,
		APIKey:         req.APIKey,
		Model:          req.Model,
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
		TimeoutSeconds: req.TimeoutSeconds,
		IsDefault:      req.IsDefault,
		IsActive:       true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.LLMConfig{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&config).Error
	})
	if err != nil {
		return nil, err
	}

	config.APIKeyMask = config.MaskAPIKey()
	return &config, nil
}

// SetDefault marks id as the only default endpoint.
func (s *LLMConfigService) SetDefault(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var config models.LLMConfig
		if err := tx.First(&config, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LLMConfig{}).Where("is_default = ? AND id != ?", true, id).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&config).Updates(map[string]interface{}{"is_default": true, "is_active": true}).Error
	})
}

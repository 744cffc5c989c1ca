package service

import (
	"context"
	"strings"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/log"
)

// PromptInput 是创建或修改提示词模板时的输入。修改时空字符串字段保持原值。
type PromptInput struct {
	Name         string `json:"name"`
	TaskType     string `json:"taskType"`
	Description  string `json:"description"`
	TemplateText string `json:"templateText"`
	Model        string `json:"model"`
}

// PromptTemplateService 管理各类大模型任务的提示词模板。
// 每个任务类型最多一个启用的模板，启用新模板会停用同类型的其他模板。
type PromptTemplateService interface {
	Get(ctx context.Context, id uint) (*model.PromptTemplate, error)
	// List 按 taskType 或 model 过滤，两者都为空时返回全部。
	List(ctx context.Context, taskType, modelName string) ([]model.PromptTemplate, error)
	Create(ctx context.Context, in PromptInput) (*model.PromptTemplate, error)
	Update(ctx context.Context, id uint, in PromptInput) (*model.PromptTemplate, error)
	Delete(ctx context.Context, id uint) error
	SetActive(ctx context.Context, id uint, active bool) (*model.PromptTemplate, error)
	// Active 返回任务类型下启用的模板，没有时返回 ErrNotFound。
	Active(ctx context.Context, taskType string) (*model.PromptTemplate, error)
}

type promptTemplateService struct {
	deps Dependencies
}

// NewPromptTemplateService 创建一个新的 PromptTemplateService 实例。
func NewPromptTemplateService(deps Dependencies) PromptTemplateService {
	return &promptTemplateService{deps: deps}
}

func (s *promptTemplateService) Get(ctx context.Context, id uint) (*model.PromptTemplate, error) {
	tmpl, err := s.deps.Store.Prompts().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "prompt template %d", id)
	}
	return tmpl, nil
}

func (s *promptTemplateService) List(ctx context.Context, taskType, modelName string) ([]model.PromptTemplate, error) {
	prompts := s.deps.Store.Prompts()
	switch {
	case taskType != "":
		return prompts.FindByTaskType(ctx, taskType)
	case modelName != "":
		return prompts.FindByModel(ctx, modelName)
	default:
		return prompts.FindAll(ctx)
	}
}

func (s *promptTemplateService) Create(ctx context.Context, in PromptInput) (*model.PromptTemplate, error) {
	tmpl := &model.PromptTemplate{
		Name:         strings.TrimSpace(in.Name),
		TaskType:     strings.TrimSpace(in.TaskType),
		Description:  in.Description,
		TemplateText: in.TemplateText,
		Model:        strings.TrimSpace(in.Model),
		Version:      1,
	}
	if tmpl.Name == "" {
		return nil, invalid("name", "模板名称不能为空")
	}
	if tmpl.TaskType == "" {
		return nil, invalid("taskType", "任务类型不能为空")
	}
	if strings.TrimSpace(tmpl.TemplateText) == "" {
		return nil, invalid("templateText", "模板内容不能为空")
	}
	if err := s.deps.Store.Prompts().Create(ctx, tmpl); err != nil {
		return nil, mapStoreError(err, "prompt template %q", tmpl.Name)
	}
	return tmpl, nil
}

// Update 修改模板，模板内容或模型变化时版本号加一。
func (s *promptTemplateService) Update(ctx context.Context, id uint, in PromptInput) (*model.PromptTemplate, error) {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		tmpl.Name = name
	}
	if taskType := strings.TrimSpace(in.TaskType); taskType != "" && taskType != tmpl.TaskType {
		if tmpl.IsActive {
			return nil, invalid("taskType", "启用中的模板不能修改任务类型")
		}
		tmpl.TaskType = taskType
	}
	if in.Description != "" {
		tmpl.Description = in.Description
	}
	changed := false
	if strings.TrimSpace(in.TemplateText) != "" && in.TemplateText != tmpl.TemplateText {
		tmpl.TemplateText = in.TemplateText
		changed = true
	}
	if m := strings.TrimSpace(in.Model); m != "" && m != tmpl.Model {
		tmpl.Model = m
		changed = true
	}
	if changed {
		tmpl.Version++
	}
	if err := s.deps.Store.Prompts().Update(ctx, tmpl); err != nil {
		return nil, mapStoreError(err, "prompt template %d", id)
	}
	return tmpl, nil
}

func (s *promptTemplateService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.deps.Store.Prompts().Delete(ctx, id)
}

func (s *promptTemplateService) SetActive(ctx context.Context, id uint, active bool) (*model.PromptTemplate, error) {
	var tmpl *model.PromptTemplate
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Prompts().FindByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "prompt template %d", id)
		}
		if active {
			if err := tx.Prompts().DeactivateTaskType(ctx, found.TaskType, id); err != nil {
				return err
			}
		}
		if err := tx.Prompts().SetActive(ctx, id, active); err != nil {
			return err
		}
		found.IsActive = active
		tmpl = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("提示词模板状态已修改, id=%d, taskType=%s, active=%t", tmpl.ID, tmpl.TaskType, active)
	return tmpl, nil
}

func (s *promptTemplateService) Active(ctx context.Context, taskType string) (*model.PromptTemplate, error) {
	tmpl, err := s.deps.Store.Prompts().FindActive(ctx, taskType)
	if err != nil {
		return nil, mapStoreError(err, "active prompt template for %s", taskType)
	}
	return tmpl, nil
}

package model

import "time"

// TaskEntityExtraction 是实体抽取任务的提示词模板类型。
const TaskEntityExtraction = "entity_extraction"

// PromptTemplate 对应于数据库中的 prompt_templates 表。
// 同一 TaskType 下最多有一个启用的模板；Model 为空时使用配置中的模型。
type PromptTemplate struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	TaskType     string    `gorm:"type:varchar(50);not null;index" json:"taskType"`
	Description  string    `gorm:"type:text" json:"description"`
	TemplateText string    `gorm:"type:longtext;not null" json:"templateText"`
	Model        string    `gorm:"type:varchar(100)" json:"model"`
	Version      int       `gorm:"not null;default:1" json:"version"`
	IsActive     bool      `gorm:"not null;default:false;index" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

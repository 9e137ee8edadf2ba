// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionBookDocuments 图书文档集合
	CollectionBookDocuments = "book_documents"
	// CollectionUserProfiles 用户画像向量集合
	CollectionUserProfiles = "user_profiles"

	// FieldContentVector 全文内容向量字段
	FieldContentVector = "content_vector"
	// FieldDescriptionVector 描述向量字段
	FieldDescriptionVector = "description_vector"

	// VectorDimension 向量维度
	VectorDimension = 1536
)

// BookDocumentsSchema 图书文档 Collection Schema
//
// 每本书携带两个向量：全文内容向量与描述向量，检索时分别召回。
func BookDocumentsSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionBookDocuments,
		Description:    "Book documents with content and description embeddings",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "author",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "description",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     FieldContentVector,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1536",
				},
			},
			{
				Name:     FieldDescriptionVector,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1536",
				},
			},
		},
	}
}

// UserProfilesSchema 用户画像 Collection Schema
//
// 画像向量由离线摄取流程写入，服务端只读。
func UserProfilesSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionUserProfiles,
		Description:    "Precomputed user profile embeddings",
		Fields: []*entity.Field{
			{
				Name:       "user_id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1536",
				},
			},
		},
	}
}

// BookDocument 图书文档数据结构
type BookDocument struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Description       string    `json:"description"`
	ContentVector     []float32 `json:"content_vector"`
	DescriptionVector []float32 `json:"description_vector"`
}

package domain

import "time"

type Category string

const (
	CategoryOpinion       Category = "opinion"
	CategoryPregunta      Category = "pregunta"
	CategoryRecomendacion Category = "recomendacion"
	CategoryAdvertencia   Category = "advertencia"
	CategoryExperiencia   Category = "experiencia"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryOpinion, CategoryPregunta, CategoryRecomendacion, CategoryAdvertencia, CategoryExperiencia:
		return true
	}
	return false
}

const MaxThreadTags = 5

type Thread struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	Tags      []string  `json:"tags"`
	Status    Status    `json:"status"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reply 回复只追加，不重排不编辑
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Likes     int64     `json:"likes"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"createdAt"`
}

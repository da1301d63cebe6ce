package model

import "time"

// Author 作者档案
//
// 出版物通过作者姓名（而非 ID）引用作者，无引用完整性约束：
// 删除作者不影响其名下出版物，档案缺失时作者页只展示姓名。
type Author struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	Image      string `json:"image" bson:"image"`
	Profile    string `json:"profile" bson:"profile"`
	Education  string `json:"education" bson:"education"`
	Experience string `json:"experience" bson:"experience"`
	Skills     string `json:"skills" bson:"skills"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

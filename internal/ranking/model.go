package ranking

// DefaultUpvotes 新记录的初始票数，生成本身计为一票
const DefaultUpvotes int64 = 1

// Ranking 归档条目的元数据记录
type Ranking struct {
	PictureID string `gorm:"column:pictureID;primaryKey;size:64" json:"picture_id"`
	Prompt    string `gorm:"column:prompt;type:text" json:"prompt"`
	Story     string `gorm:"column:story;type:text" json:"story"`
	Upvotes   int64  `gorm:"column:upvotes;not null;default:1" json:"upvotes"`
}

// TableName 指定表名
func (Ranking) TableName() string {
	return "ArchiveRanking"
}

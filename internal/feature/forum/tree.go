package forum

import "vitrina/internal/domain"

// FindReply 深度优先查找，返回树内元素的指针
func FindReply(replies []domain.Reply, id string) *domain.Reply {
	for i := range replies {
		if replies[i].ID == id {
			return &replies[i]
		}
		if r := FindReply(replies[i].Replies, id); r != nil {
			return r
		}
	}
	return nil
}

// CountReplies 整棵树的回复数
func CountReplies(replies []domain.Reply) int {
	n := len(replies)
	for i := range replies {
		n += CountReplies(replies[i].Replies)
	}
	return n
}

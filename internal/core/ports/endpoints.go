package ports

import "github.com/jupiterclapton/journal/pkg/listing"

// Endpoint fixe la stratégie et l'ordre d'une liste. Le client ne les choisit jamais.
type Endpoint struct {
	Name     string
	Strategy listing.Strategy
	Order    listing.Order
}

var (
	MemberSearch = Endpoint{"members", listing.KeysetStrategy, listing.Order{Direction: listing.Asc}}
	FriendList   = Endpoint{"friends", listing.KeysetStrategy, listing.Order{Direction: listing.Asc}}
	RequestInbox = Endpoint{"friend_requests", listing.KeysetStrategy, listing.Order{Direction: listing.Asc}}
	OwnDiaries   = Endpoint{"own_diaries", listing.OffsetStrategy, listing.Order{Direction: listing.Desc, ByCreation: true}}
	MemberDiary  = Endpoint{"member_diaries", listing.OffsetStrategy, listing.Order{Direction: listing.Desc, ByCreation: true}}
	FriendFeed   = Endpoint{"feed", listing.KeysetStrategy, listing.Order{Direction: listing.Desc}}
	Explore      = Endpoint{"explore", listing.KeysetStrategy, listing.Order{Direction: listing.Desc}}
	CommentList  = Endpoint{"comments", listing.OffsetStrategy, listing.Order{Direction: listing.Asc, ByCreation: true}}
)

// Normalize ramène au début un curseur d'une autre stratégie.
func (e Endpoint) Normalize(req listing.PageRequest) listing.PageRequest {
	if req.Cursor.Strategy() != e.Strategy {
		req.Cursor = listing.Start(e.Strategy)
	}
	if req.Size <= 0 {
		req.Size = listing.DefaultSize
	}
	return req
}

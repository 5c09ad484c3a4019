package services

import (
	"context"

	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/pkg/listing"
)

type memberService struct {
	members ports.MemberRepository
	builder *filters.Builder
	obs     ports.ListingObserver
}

func NewMemberService(members ports.MemberRepository, builder *filters.Builder, obs ports.ListingObserver) ports.MemberService {
	return &memberService{members: members, builder: builder, obs: obs}
}

func (s *memberService) GetMember(ctx context.Context, id int64) (*domain.Member, error) {
	return s.members.FindByID(ctx, id)
}

// SearchMembers parcourt l'annuaire par id croissant, sans le lecteur lui-même.
func (s *memberService) SearchMembers(ctx context.Context, viewerID int64, c filters.MemberCriteria, req listing.PageRequest) (listing.Page[*domain.Member], error) {
	c.ExcludeID = &viewerID
	return paginate(ctx, s.obs, ports.MemberSearch, s.members, s.builder.Member(c), req, memberID)
}

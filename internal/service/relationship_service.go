package service

import (
	"context"
	"strings"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/repository"
)

// fold normalizes a username for graph operations. Usernames are
// case-insensitive node identifiers; everything below the service
// boundary sees the folded form only.
func fold(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// RelationshipService implements the follow/block state machine over
// the edge store. All username pairs are folded before touching the
// repository, so "Alice" and "alice" are the same node everywhere.
type RelationshipService struct {
	repo          repository.RelationshipRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(repo repository.RelationshipRepository, userRepo repository.UserRepository, notifications *NotificationService) *RelationshipService {
	return &RelationshipService{repo: repo, userRepo: userRepo, notifications: notifications}
}

// Follow creates an edge from -> to. Private targets get a pending
// request, public targets an immediately accepted edge. The matching
// notification is emitted after the edge commits and is never rolled
// back if emission fails.
func (s *RelationshipService) Follow(ctx context.Context, from, to string) (*models.Relationship, error) {
	from, to = fold(from), fold(to)
	if from == to {
		return nil, models.NewSelfActionError("follow")
	}

	target, err := s.userRepo.GetByUsername(ctx, to)
	if err != nil {
		return nil, err
	}

	// A block held by either side kills the request before any write.
	blocked, err := s.blockedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewBlockedError()
	}

	status := models.RelationshipStatusAccepted
	if target.IsPrivate {
		status = models.RelationshipStatusPending
	}

	edge := &models.Relationship{FromUsername: from, ToUsername: to, Status: status}
	if err := s.repo.Create(ctx, edge); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		typ := models.NotificationFollow
		if status == models.RelationshipStatusPending {
			typ = models.NotificationFollowRequest
		}
		s.notifications.Emit(ctx, to, from, typ, nil)
	}
	return edge, nil
}

// Accept promotes requester's pending request to me into an accepted
// edge and tells the requester about it.
func (s *RelationshipService) Accept(ctx context.Context, me, requester string) error {
	me, requester = fold(me), fold(requester)
	if err := s.repo.Transition(ctx, requester, me,
		models.RelationshipStatusPending, models.RelationshipStatusAccepted); err != nil {
		return err
	}
	if s.notifications != nil {
		s.notifications.Emit(ctx, requester, me, models.NotificationFollowAccepted, nil)
	}
	return nil
}

// Reject drops requester's pending request to me. No notification; the
// requester only ever learns about acceptance.
func (s *RelationshipService) Reject(ctx context.Context, me, requester string) error {
	return s.repo.DeleteWithStatus(ctx, fold(requester), fold(me), models.RelationshipStatusPending)
}

// Unfollow removes my accepted edge to target. A pending request is not
// an accepted edge; callers cancel those with CancelRequest.
func (s *RelationshipService) Unfollow(ctx context.Context, me, target string) error {
	return s.repo.DeleteWithStatus(ctx, fold(me), fold(target), models.RelationshipStatusAccepted)
}

// CancelRequest withdraws my pending request to target.
func (s *RelationshipService) CancelRequest(ctx context.Context, me, target string) error {
	return s.repo.DeleteWithStatus(ctx, fold(me), fold(target), models.RelationshipStatusPending)
}

// RemoveFollower drops follower's accepted edge to me.
func (s *RelationshipService) RemoveFollower(ctx context.Context, me, follower string) error {
	return s.repo.DeleteWithStatus(ctx, fold(follower), fold(me), models.RelationshipStatusAccepted)
}

// Block severs every edge between me and target in both directions and
// records a single blocked edge me -> target. Idempotent: re-blocking
// an already blocked target rewrites the same state.
func (s *RelationshipService) Block(ctx context.Context, me, target string) error {
	me, target = fold(me), fold(target)
	if me == target {
		return models.NewSelfActionError("block")
	}
	if _, err := s.userRepo.GetByUsername(ctx, target); err != nil {
		return err
	}
	return s.repo.ReplaceWithBlock(ctx, me, target)
}

// Unblock removes my blocked edge to target. The graph returns to
// no-relationship; neither side follows the other afterwards.
func (s *RelationshipService) Unblock(ctx context.Context, me, target string) error {
	return s.repo.DeleteWithStatus(ctx, fold(me), fold(target), models.RelationshipStatusBlocked)
}

// Status labels the relationship from viewer's perspective. The
// outgoing edge wins over an incoming pending request, matching the
// single-label contract of profile rendering.
func (s *RelationshipService) Status(ctx context.Context, viewer, target string) (string, error) {
	viewer, target = fold(viewer), fold(target)
	if viewer == "" {
		return models.StatusLabelNone, nil
	}
	if viewer == target {
		return models.StatusLabelSelf, nil
	}

	out, err := s.repo.Get(ctx, viewer, target)
	if err != nil {
		return "", err
	}
	if out != nil {
		switch out.Status {
		case models.RelationshipStatusAccepted:
			return models.StatusLabelFollowing, nil
		case models.RelationshipStatusPending:
			return models.StatusLabelPending, nil
		case models.RelationshipStatusBlocked:
			return models.StatusLabelBlocked, nil
		}
	}

	in, err := s.repo.Get(ctx, target, viewer)
	if err != nil {
		return "", err
	}
	if in != nil && in.Status == models.RelationshipStatusPending {
		return models.StatusLabelIncomingRequest, nil
	}
	return models.StatusLabelNone, nil
}

// BatchStatus labels many targets with two queries. The result matches
// calling Status per target; callers rely on that equivalence.
func (s *RelationshipService) BatchStatus(ctx context.Context, viewer string, targets []string) (map[string]string, error) {
	viewer = fold(viewer)
	labels := make(map[string]string, len(targets))
	folded := make([]string, 0, len(targets))
	for _, t := range targets {
		t = fold(t)
		if t == viewer {
			labels[t] = models.StatusLabelSelf
			continue
		}
		labels[t] = models.StatusLabelNone
		folded = append(folded, t)
	}
	if viewer == "" || len(folded) == 0 {
		return labels, nil
	}

	incoming, err := s.repo.IncomingPendingIn(ctx, viewer, folded)
	if err != nil {
		return nil, err
	}
	for _, e := range incoming {
		labels[e.FromUsername] = models.StatusLabelIncomingRequest
	}

	// Applied after incoming so the outgoing edge wins, same as Status.
	outgoing, err := s.repo.OutgoingIn(ctx, viewer, folded)
	if err != nil {
		return nil, err
	}
	for _, e := range outgoing {
		switch e.Status {
		case models.RelationshipStatusAccepted:
			labels[e.ToUsername] = models.StatusLabelFollowing
		case models.RelationshipStatusPending:
			labels[e.ToUsername] = models.StatusLabelPending
		case models.RelationshipStatusBlocked:
			labels[e.ToUsername] = models.StatusLabelBlocked
		}
	}
	return labels, nil
}

// Following returns the usernames me follows (accepted edges only).
func (s *RelationshipService) Following(ctx context.Context, me string) ([]string, error) {
	edges, err := s.repo.ListFrom(ctx, fold(me), models.RelationshipStatusAccepted)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.ToUsername)
	}
	return names, nil
}

// Followers returns the usernames following me.
func (s *RelationshipService) Followers(ctx context.Context, me string) ([]string, error) {
	edges, err := s.repo.ListTo(ctx, fold(me), models.RelationshipStatusAccepted)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.FromUsername)
	}
	return names, nil
}

// Requests returns usernames with a pending request to me, newest first.
func (s *RelationshipService) Requests(ctx context.Context, me string) ([]string, error) {
	edges, err := s.repo.ListTo(ctx, fold(me), models.RelationshipStatusPending)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.FromUsername)
	}
	return names, nil
}

// Blocked returns the usernames me has blocked.
func (s *RelationshipService) Blocked(ctx context.Context, me string) ([]string, error) {
	edges, err := s.repo.ListFrom(ctx, fold(me), models.RelationshipStatusBlocked)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.ToUsername)
	}
	return names, nil
}

func (s *RelationshipService) blockedBetween(ctx context.Context, a, b string) (bool, error) {
	edge, err := s.repo.Get(ctx, b, a)
	if err != nil {
		return false, err
	}
	if edge != nil && edge.Status == models.RelationshipStatusBlocked {
		return true, nil
	}
	edge, err = s.repo.Get(ctx, a, b)
	if err != nil {
		return false, err
	}
	return edge != nil && edge.Status == models.RelationshipStatusBlocked, nil
}

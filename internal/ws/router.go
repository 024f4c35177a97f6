package ws

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"gossip/internal/domain"
	"gossip/internal/security"
)

// Router decides, for each inbound event, the persistence shape and the set
// of recipient sessions, and applies both. It is the sole writer of message
// rows and delivery-state transitions.
//
// The persistence write for a message always completes before any push that
// references it, and the recipient's session is looked up again after the
// write: they may have disconnected while the insert was in flight.
type Router struct {
	registry *Registry
	presence *Notifier
	users    domain.UserRepository
	groups   domain.GroupRepository
	messages domain.MessageRepository
	enc      *security.Encryptor
	log      *zap.SugaredLogger
}

func NewRouter(
	registry *Registry,
	presence *Notifier,
	users domain.UserRepository,
	groups domain.GroupRepository,
	messages domain.MessageRepository,
	enc *security.Encryptor,
	log *zap.SugaredLogger,
) *Router {
	return &Router{
		registry: registry,
		presence: presence,
		users:    users,
		groups:   groups,
		messages: messages,
		enc:      enc,
		log:      log,
	}
}

// JoinRoom binds the session to the user and flips presence online.
func (r *Router) JoinRoom(ctx context.Context, sess Session, p JoinRoomPayload) error {
	user, err := r.users.GetByID(ctx, p.UserID)
	if err != nil {
		r.sendError(sess, "unknown user")
		return err
	}
	r.registry.Register(user.ID, sess)
	r.presence.UserOnline(ctx, user.ID)
	return nil
}

// Direct routes the first element of a direct-message batch: validate both
// parties, persist as "sent", push to the recipient if online, echo the
// authoritative record back to the sender.
func (r *Router) Direct(ctx context.Context, sender Session, p DirectMessagePayload) {
	if len(p.Messages) == 0 {
		r.sendError(sender, "message batch is empty")
		return
	}
	if _, err := r.users.GetByID(ctx, p.From); err != nil {
		r.sendError(sender, "unknown sender")
		return
	}
	if _, err := r.users.GetByID(ctx, p.To); err != nil {
		r.sendError(sender, "unknown recipient")
		return
	}

	_, plain, err := r.persist(ctx, p.From, p.Messages[0], &p.To, nil)
	if err != nil {
		r.log.Errorw("persist direct message", "from", p.From, "to", p.To, "err", err)
		r.sendError(sender, "failed to send message")
		return
	}

	if recipient, ok := r.registry.Lookup(p.To); ok {
		r.push(recipient, EventMessage, DirectMessageEvent{
			From:     p.From,
			To:       p.To,
			Messages: []*domain.Message{plain},
		})
		// hint so the recipient's client re-resolves unread counts
		r.push(recipient, EventUsers, nil)
	}

	r.push(sender, EventRefreshMsg, plain)
}

// MarkRead advances the most recent message addressed to the user that is
// still in "sent" state. No matching message is a benign no-op. If the
// original sender is online they get a read-receipt push.
func (r *Router) MarkRead(ctx context.Context, p MarkReadPayload) {
	msg, err := r.messages.LatestForRecipient(ctx, p.UserID, domain.DeliverySent)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		r.log.Errorw("find message to acknowledge", "user_id", p.UserID, "err", err)
		return
	}

	if err := r.messages.SetState(ctx, msg.ID, domain.DeliveryReceived); err != nil {
		r.log.Errorw("advance delivery state", "message_id", msg.ID, "err", err)
		return
	}
	msg.State = domain.DeliveryReceived

	if sender, ok := r.registry.Lookup(msg.SenderID); ok {
		r.push(sender, EventMarkRead, MarkReadEvent{Message: r.decrypted(msg)})
	}
}

// JoinGroup subscribes the session to a group channel. Clients call this
// explicitly after fetching their group list.
func (r *Router) JoinGroup(ctx context.Context, sess Session, p JoinGroupPayload) {
	group, err := r.groups.GetByID(ctx, p.GroupID)
	if err != nil {
		r.sendError(sess, "unknown group")
		return
	}
	if !group.HasMember(p.UserID) {
		r.sendError(sess, "not a member of this group")
		return
	}
	r.registry.Subscribe(group.ID, sess)
}

// Group routes the first element of a group-message batch: persist with the
// group id, broadcast to every channel subscriber except the sender, echo
// the authoritative record to the sender.
func (r *Router) Group(ctx context.Context, sender Session, p GroupMessagePayload) {
	if len(p.Messages) == 0 {
		r.sendError(sender, "message batch is empty")
		return
	}
	if _, err := r.users.GetByID(ctx, p.From); err != nil {
		r.sendError(sender, "unknown sender")
		return
	}
	if _, err := r.groups.GetByID(ctx, p.GroupID); err != nil {
		r.sendError(sender, "unknown group")
		return
	}

	_, plain, err := r.persist(ctx, p.From, p.Messages[0], nil, &p.GroupID)
	if err != nil {
		r.log.Errorw("persist group message", "from", p.From, "group_id", p.GroupID, "err", err)
		r.sendError(sender, "failed to send message")
		return
	}

	subscribers := r.registry.Channel(p.GroupID)
	others := lo.Filter(subscribers, func(s Session, _ int) bool {
		return s.ID() != sender.ID()
	})
	for _, s := range others {
		r.push(s, EventGroupMessage, GroupMessageEvent{
			From:     p.From,
			GroupID:  p.GroupID,
			Messages: []*domain.Message{plain},
		})
	}
	for _, s := range subscribers {
		r.push(s, EventUsers, nil)
	}

	r.push(sender, EventGroupRefreshMsg, plain)
}

// Disconnect clears the session's binding, if it holds one, and flips
// presence offline in the same invocation.
func (r *Router) Disconnect(ctx context.Context, sess Session) {
	if userID, ok := r.registry.Unregister(sess); ok {
		r.presence.UserOffline(ctx, userID)
	}
}

// persist encrypts and writes one message. The record enters as pending and
// is stored as sent; the returned plain copy carries the decrypted text for
// pushes and echoes.
func (r *Router) persist(
	ctx context.Context,
	senderID int64,
	in MessagePayload,
	recipientID, groupID *int64,
) (*domain.Message, *domain.Message, error) {
	enc, err := r.enc.Encrypt(in.Text)
	if err != nil {
		return nil, nil, err
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	msg := &domain.Message{
		Text:        enc,
		Image:       in.Image,
		Video:       in.Video,
		Location:    in.Location,
		SenderID:    senderID,
		RecipientID: recipientID,
		GroupID:     groupID,
		ClientMsgID: in.MsgID,
		State:       domain.DeliveryPending,
		CreatedAt:   createdAt,
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}

	msg.State = domain.DeliverySent
	if err := r.messages.Create(ctx, msg); err != nil {
		return nil, nil, err
	}

	plain := *msg
	plain.Text = in.Text
	return msg, &plain, nil
}

// decrypted returns a copy of the message with its text decrypted, falling
// back to the stored ciphertext if the key no longer verifies.
func (r *Router) decrypted(m *domain.Message) *domain.Message {
	out := *m
	if dec, err := r.enc.Decrypt(m.Text); err == nil {
		out.Text = dec
	}
	return &out
}

// push writes one event to a session. A failed write means the session
// disconnected mid-handler; that is equivalent to "recipient offline" and
// must not fail the routing of the message.
func (r *Router) push(s Session, event string, data any) {
	if err := writeEvent(s, event, data); err != nil {
		r.log.Debugw("push failed", "event", event, "session_id", s.ID(), "err", err)
	}
}

func (r *Router) sendError(s Session, msg string) {
	if err := writeEvent(s, EventError, ErrorEvent{Message: msg}); err != nil {
		r.log.Debugw("error push failed", "session_id", s.ID(), "err", err)
	}
}

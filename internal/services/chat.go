package services

import (
	"strings"
	"sync"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/gorm"
)

// ChatService stores group chat as a flat ordered message list and fans
// new messages out to connected members.
type ChatService struct {
	db     *gorm.DB
	groups *GroupService
	hub    *chatHub
}

func NewChatService(gdb *gorm.DB, groups *GroupService) *ChatService {
	return &ChatService{
		db:     gdb,
		groups: groups,
		hub:    newChatHub(),
	}
}

// Post appends a message to the group's chat and broadcasts it.
func (s *ChatService) Post(groupID, userID uint, content string) (*models.GroupMessage, error) {
	if err := s.groups.RequireMember(groupID, userID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationf("message must not be empty")
	}

	message := models.GroupMessage{GroupID: groupID, UserID: userID, Content: content}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, persistencef(err)
	}
	s.db.Preload("User").First(&message, message.ID)

	s.hub.broadcast(message)
	return &message, nil
}

// List returns the group's messages in chronological order.
func (s *ChatService) List(groupID, viewerID uint, limit int) ([]models.GroupMessage, error) {
	if err := s.groups.RequireMember(groupID, viewerID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 500 {
		limit = 200
	}

	// Fetch the newest N then return them oldest-first
	var messages []models.GroupMessage
	err := s.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, persistencef(err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Subscribe attaches a member to the group's live message feed. The
// returned cancel func must be called when the client disconnects.
func (s *ChatService) Subscribe(groupID, viewerID uint) (<-chan models.GroupMessage, func(), error) {
	if err := s.groups.RequireMember(groupID, viewerID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(groupID)
	return ch, cancel, nil
}

// chatHub is the in-process fanout for live chat. Slow subscribers are
// skipped rather than allowed to block the sender.
type chatHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uint]map[int]chan models.GroupMessage // groupID -> subscriber id -> channel
}

func newChatHub() *chatHub {
	return &chatHub{subs: make(map[uint]map[int]chan models.GroupMessage)}
}

func (h *chatHub) subscribe(groupID uint) (chan models.GroupMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan models.GroupMessage, 16)
	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[int]chan models.GroupMessage)
	}
	h.subs[groupID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subs[groupID]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
			if len(subs) == 0 {
				delete(h.subs, groupID)
			}
		}
	}
	return ch, cancel
}

func (h *chatHub) broadcast(message models.GroupMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[message.GroupID] {
		select {
		case ch <- message:
		default:
			// Subscriber buffer full, drop for this client
		}
	}
}

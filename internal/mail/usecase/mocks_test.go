package usecase

import (
	"context"
	"fmt"
	"time"

	custdomain "github.com/vraj-isotiya/topcitylight/internal/customer/domain"
	custrepo "github.com/vraj-isotiya/topcitylight/internal/customer/repository"
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	"github.com/vraj-isotiya/topcitylight/pkg/mailer"
)

// mockThreadRepo is an in-memory ThreadRepository with the same idempotency
// semantics as the gorm implementation.
type mockThreadRepo struct {
	threads map[string]*maildomain.EmailThread // by ID
	replies map[string]*maildomain.EmailReply  // by MessageID

	createErr error
	findErr   error
	appendErr error
}

func newMockThreadRepo() *mockThreadRepo {
	return &mockThreadRepo{
		threads: map[string]*maildomain.EmailThread{},
		replies: map[string]*maildomain.EmailReply{},
	}
}

func (m *mockThreadRepo) CreateThread(thread *maildomain.EmailThread) error {
	if m.createErr != nil {
		return m.createErr
	}
	if thread.ID == "" {
		thread.ID = fmt.Sprintf("thread-%d", len(m.threads)+1)
	}
	if thread.Status == "" {
		thread.Status = maildomain.ThreadStatusSent
	}
	m.threads[thread.ID] = thread
	return nil
}

func (m *mockThreadRepo) GetThreadByID(id string) (*maildomain.EmailThread, error) {
	if t, ok := m.threads[id]; ok {
		return t, nil
	}
	return nil, maildomain.ErrThreadNotFound
}

func (m *mockThreadRepo) FindThreadByMessageID(messageID string) (*maildomain.EmailThread, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, t := range m.threads {
		if t.MessageID == messageID {
			return t, nil
		}
	}
	return nil, maildomain.ErrThreadNotFound
}

func (m *mockThreadRepo) AppendReply(reply *maildomain.EmailReply) (*maildomain.EmailReply, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	if existing, ok := m.replies[reply.MessageID]; ok {
		return existing, nil
	}
	if reply.ID == "" {
		reply.ID = fmt.Sprintf("reply-%d", len(m.replies)+1)
	}
	m.replies[reply.MessageID] = reply
	if t, ok := m.threads[reply.ThreadID]; ok {
		t.Status = maildomain.ThreadStatusReplied
	}
	return reply, nil
}

func (m *mockThreadRepo) ListThreadsForCustomer(customerID string) ([]*maildomain.EmailThread, error) {
	var out []*maildomain.EmailThread
	for _, t := range m.threads {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockThreadRepo) ListThreadsPaged(customerID string, page, limit int) ([]*maildomain.EmailThread, int64, error) {
	var out []*maildomain.EmailThread
	for _, t := range m.threads {
		if customerID == "" || t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockThreadRepo) GetStats() (*maildomain.EmailStats, error) {
	stats := &maildomain.EmailStats{TotalThreads: int64(len(m.threads))}
	for _, t := range m.threads {
		if t.Status == maildomain.ThreadStatusReplied {
			stats.RepliedThreads++
		}
	}
	return stats, nil
}

type mockSettingRepo struct {
	setting *maildomain.EmailProviderSetting

	getErr     error
	advanceErr error

	advanceCalls []uint32
}

func (m *mockSettingRepo) GetActive() (*maildomain.EmailProviderSetting, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.setting, nil
}

func (m *mockSettingRepo) AdvanceLastUID(id string, uid uint32) error {
	if m.advanceErr != nil {
		return m.advanceErr
	}
	m.advanceCalls = append(m.advanceCalls, uid)
	if m.setting != nil && uid > m.setting.LastUID {
		m.setting.LastUID = uid
	}
	return nil
}

func (m *mockSettingRepo) Create(setting *maildomain.EmailProviderSetting) error {
	setting.ID = "setting-1"
	m.setting = setting
	return nil
}

func (m *mockSettingRepo) List() ([]*maildomain.EmailProviderSetting, error) {
	if m.setting == nil {
		return nil, nil
	}
	return []*maildomain.EmailProviderSetting{m.setting}, nil
}

type mockCustomerRepo struct {
	customers map[string]*custdomain.Customer
}

func (m *mockCustomerRepo) FindByID(id string) (*custdomain.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, custrepo.ErrCustomerNotFound
}

type mockUserRepo struct {
	users map[string]*custdomain.User
}

func (m *mockUserRepo) FindByID(id string) (*custdomain.User, error) {
	return m.users[id], nil
}

// mockDispatcher records sent messages and hands out sequential Message-IDs.
type mockDispatcher struct {
	sent    []mailer.OutboundMessage
	sendErr error
	nextID  int
}

func (m *mockDispatcher) Send(_ context.Context, msg mailer.OutboundMessage) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("<msg-%d@crm.example.com>", m.nextID), nil
}

func (m *mockDispatcher) factory() DispatcherFactory {
	return func(*maildomain.EmailProviderSetting, time.Duration) (mailer.Dispatcher, error) {
		return m, nil
	}
}

type mockFetcher struct {
	messages []maildomain.InboundMessage
	fetchErr error

	gotLastUID uint32
}

func (m *mockFetcher) FetchNewMessages(_ context.Context, _ *maildomain.EmailProviderSetting, lastUID uint32) ([]maildomain.InboundMessage, error) {
	m.gotLastUID = lastUID
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []maildomain.InboundMessage
	for _, msg := range m.messages {
		if msg.UID > lastUID {
			out = append(out, msg)
		}
	}
	return out, nil
}

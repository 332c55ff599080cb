package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardkeep/cardkeep-be/internal/models"
)

// CardPatch is the allow-listed subset of card fields a partial update may
// touch. Anything else in a request body is ignored.
type CardPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// CardServiceProvider defines the interface for card services. Every
// operation is scoped to the creator; one user's cards are invisible to
// another.
type CardServiceProvider interface {
	CreateCard(creator, text string) (models.Card, error)
	GetAllCards(creator string) ([]models.Card, error)
	GetCardByID(id, creator string) (models.Card, error)
	UpdateCard(id, creator string, patch CardPatch) (models.Card, error)
	DeleteCard(id, creator string) (models.Card, error)
}

// CardService provides business logic for card management.
type CardService struct {
	db *sql.DB
}

// NewCardService creates a new CardService.
func NewCardService(db *sql.DB) *CardService {
	return &CardService{db: db}
}

// CreateCard persists a new card owned by creator. Text is required.
func (s *CardService) CreateCard(creator, text string) (models.Card, error) {
	if strings.TrimSpace(text) == "" {
		return models.Card{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	card := models.Card{
		ID:        uuid.New().String(),
		Text:      text,
		Completed: false,
		Creator:   creator,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec("INSERT INTO cards(id, text, completed, completed_at, creator) VALUES(?, ?, 0, NULL, ?)", card.ID, card.Text, card.Creator)
	if err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// GetAllCards retrieves every card owned by creator.
func (s *CardService) GetAllCards(creator string) ([]models.Card, error) {
	rows, err := s.db.Query("SELECT id, text, completed, completed_at, creator, created_at FROM cards WHERE creator = ?", creator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// GetCardByID retrieves a single owned card. A malformed id behaves exactly
// like an absent one so the wire can't distinguish them.
func (s *CardService) GetCardByID(id, creator string) (models.Card, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Card{}, ErrNotFound
	}

	row := s.db.QueryRow("SELECT id, text, completed, completed_at, creator, created_at FROM cards WHERE id = ? AND creator = ?", id, creator)
	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Card{}, ErrNotFound
		}
		return models.Card{}, err
	}
	return card, nil
}

// UpdateCard applies an allow-listed partial update. The completedAt
// derivation happens here, before the write: completed=true stamps the
// current time, anything else forces completed=false and clears the stamp.
// The derived fields and the optional text land in one UPDATE statement.
func (s *CardService) UpdateCard(id, creator string, patch CardPatch) (models.Card, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Card{}, ErrNotFound
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return models.Card{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	completed := patch.Completed != nil && *patch.Completed
	var completedAt *int64
	if completed {
		ms := time.Now().UnixMilli()
		completedAt = &ms
	}

	res, err := s.db.Exec(`
		UPDATE cards
		SET text = COALESCE(?, text), completed = ?, completed_at = ?
		WHERE id = ? AND creator = ?`, patch.Text, completed, completedAt, id, creator)
	if err != nil {
		return models.Card{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Card{}, err
	}
	if affected == 0 {
		return models.Card{}, ErrNotFound
	}

	return s.GetCardByID(id, creator)
}

// DeleteCard removes an owned card and returns the removed document.
func (s *CardService) DeleteCard(id, creator string) (models.Card, error) {
	card, err := s.GetCardByID(id, creator)
	if err != nil {
		return models.Card{}, err
	}

	if _, err := s.db.Exec("DELETE FROM cards WHERE id = ? AND creator = ?", id, creator); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (models.Card, error) {
	var card models.Card
	var completedAt sql.NullInt64
	if err := row.Scan(&card.ID, &card.Text, &card.Completed, &completedAt, &card.Creator, &card.CreatedAt); err != nil {
		return models.Card{}, err
	}
	if completedAt.Valid {
		card.CompletedAt = &completedAt.Int64
	}
	return card, nil
}

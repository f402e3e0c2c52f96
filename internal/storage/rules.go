package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
)

const ruleColumns = `id, label, description, min_ratio, max_ratio, is_active, created_at, updated_at`

// CreateRule validates a rule against the active rule set and inserts it.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		rule.ID = 0
		if err := s.checkRuleTx(ctx, tx, *rule); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO classification_rules (label, description, min_ratio, max_ratio, is_active)
			VALUES (?, ?, ?, ?, ?)`,
			strings.TrimSpace(rule.Label), rule.Description, rule.MinRatio, rule.MaxRatio, rule.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get rule ID: %w", err)
		}

		now := time.Now()
		rule.ID = id
		rule.Label = strings.TrimSpace(rule.Label)
		rule.CreatedAt = now
		rule.UpdatedAt = now
		return nil
	})
}

// GetRule retrieves a rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int64) (*model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM classification_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// ListRules returns every rule, active first, ordered by min ratio.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRulesTx(ctx, s.db, `SELECT `+ruleColumns+` FROM classification_rules
		ORDER BY is_active DESC, min_ratio ASC, id ASC`)
}

// ListActiveRules returns the active rules in evaluation order.
func (s *SQLiteStorage) ListActiveRules(ctx context.Context) ([]model.ClassificationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.activeRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) activeRulesTx(ctx context.Context, q queryable) ([]model.ClassificationRule, error) {
	return s.listRulesTx(ctx, q, `SELECT `+ruleColumns+` FROM classification_rules
		WHERE is_active = 1
		ORDER BY min_ratio ASC, id ASC`)
}

func (s *SQLiteStorage) listRulesTx(ctx context.Context, q queryable, query string) ([]model.ClassificationRule, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules := []model.ClassificationRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// UpdateRule rewrites an existing rule after re-running the conflict gate.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.ClassificationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateID(rule.ID, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkRuleTx(ctx, tx, *rule); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE classification_rules SET
				label = ?, description = ?, min_ratio = ?, max_ratio = ?, is_active = ?
			WHERE id = ?`,
			strings.TrimSpace(rule.Label), rule.Description, rule.MinRatio, rule.MaxRatio, rule.IsActive,
			rule.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		if err := expectOneRow(result, "rule", rule.ID); err != nil {
			return err
		}

		rule.UpdatedAt = time.Now()
		return nil
	})
}

// SetRuleActive toggles a rule. Activation runs the conflict gate.
func (s *SQLiteStorage) SetRuleActive(ctx context.Context, id int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM classification_rules WHERE id = ?`, id)
		rule, err := scanRule(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
			}
			return fmt.Errorf("failed to get rule: %w", err)
		}

		rule.IsActive = active
		if err := s.checkRuleTx(ctx, tx, *rule); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `UPDATE classification_rules SET is_active = ? WHERE id = ?`, active, id)
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		return expectOneRow(result, "rule", id)
	})
}

// DeleteRule removes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM classification_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return expectOneRow(result, "rule", id)
}

// checkRuleTx runs the conflict gate against the active rules visible to q.
func (s *SQLiteStorage) checkRuleTx(ctx context.Context, q queryable, rule model.ClassificationRule) error {
	existing, err := s.activeRulesTx(ctx, q)
	if err != nil {
		return err
	}
	return classify.CheckRule(rule, existing)
}

func scanRule(row rowScanner) (*model.ClassificationRule, error) {
	var rule model.ClassificationRule
	err := row.Scan(
		&rule.ID, &rule.Label, &rule.Description, &rule.MinRatio, &rule.MaxRatio,
		&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

package trader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crypto-portfolio-go/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// totalPrecision matches the scale of the decimal(20,8) columns.
const totalPrecision = 8

// Engine is the account ledger: it owns user balances, holdings and the
// transaction log. Every mutation runs in one database transaction that locks
// the user row first, so concurrent requests for the same user are serialized.
type Engine struct {
	logger *zap.Logger
	db     *gorm.DB
	now    func() time.Time
}

// NewEngine creates a new trading engine.
func NewEngine(logger *zap.Logger, db *gorm.DB) *Engine {
	return &Engine{
		logger: logger.Named("trader"),
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Order is a client request to buy or sell Amount units of Symbol at Price.
// The price is taken as given and is not checked against the market feed.
type Order struct {
	Symbol string
	Name   string
	Amount decimal.Decimal
	Price  decimal.Decimal
}

func (o Order) validate() (Order, error) {
	o.Symbol = strings.TrimSpace(o.Symbol)
	o.Name = strings.TrimSpace(o.Name)
	if o.Symbol == "" {
		return o, ErrInvalidSymbol
	}
	if !o.Amount.IsPositive() || !o.Price.IsPositive() {
		return o, ErrInvalidAmount
	}
	if !fitsScale(o.Amount) || !fitsScale(o.Price) {
		return o, ErrInvalidAmount
	}
	// A tiny order can still round to a zero total.
	if !o.Total().IsPositive() {
		return o, ErrInvalidAmount
	}
	return o, nil
}

// fitsScale reports whether v can be stored in a decimal(20,8) column without rounding.
func fitsScale(v decimal.Decimal) bool {
	return v.Equal(v.Round(totalPrecision))
}

// Total is the value of the order in the account currency.
func (o Order) Total() decimal.Decimal {
	return o.Price.Mul(o.Amount).Round(totalPrecision)
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// lockUser loads the user row with a write lock held until tx ends.
func lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := tx.Clauses(forUpdate).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not load user %d: %w", userID, err)
	}
	return &user, nil
}

// lockHolding loads the user's holding of symbol with a write lock.
// It returns nil, nil when the user holds none.
func lockHolding(tx *gorm.DB, userID uint, symbol string) (*models.Holding, error) {
	var holding models.Holding
	err := tx.Clauses(forUpdate).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load holding %s: %w", symbol, err)
	}
	return &holding, nil
}

func setBalance(tx *gorm.DB, user *models.User, balance decimal.Decimal) error {
	if err := tx.Model(user).Update("balance", balance).Error; err != nil {
		return fmt.Errorf("could not update balance: %w", err)
	}
	user.Balance = balance
	return nil
}

// Balance returns the user's current balance.
func (e *Engine) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	user, err := e.Profile(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// Profile returns the user's account row.
func (e *Engine) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := e.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not load user %d: %w", userID, err)
	}
	return &user, nil
}

// AddFunds credits amount to the user's balance and returns the new balance.
func (e *Engine) AddFunds(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() || !fitsScale(amount) {
		return decimal.Zero, ErrInvalidAmount
	}

	var balance decimal.Decimal
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if err := setBalance(tx, user, user.Balance.Add(amount)); err != nil {
			return err
		}
		balance = user.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	e.logger.Info("Funds added",
		zap.Uint("user_id", userID),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", balance))
	return balance, nil
}

// Buy debits the order total from the balance, credits the holding and
// records a buy transaction. Nothing changes if any step fails.
func (e *Engine) Buy(ctx context.Context, userID uint, order Order) (*models.Transaction, error) {
	order, err := order.validate()
	if err != nil {
		return nil, err
	}
	total := order.Total()

	l := e.logger.With(
		zap.Uint("user_id", userID),
		zap.String("symbol", order.Symbol),
		zap.Stringer("amount", order.Amount),
		zap.Stringer("price", order.Price),
		zap.Stringer("total", total),
	)

	var trade models.Transaction
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(total) {
			return ErrInsufficientBalance
		}
		if err := setBalance(tx, user, user.Balance.Sub(total)); err != nil {
			return err
		}

		holding, err := lockHolding(tx, userID, order.Symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			holding = &models.Holding{
				UserID: userID,
				Symbol: order.Symbol,
				Name:   order.Name,
				Amount: order.Amount,
			}
			if err := tx.Create(holding).Error; err != nil {
				return fmt.Errorf("could not create holding: %w", err)
			}
		} else if err := tx.Model(holding).Update("amount", holding.Amount.Add(order.Amount)).Error; err != nil {
			return fmt.Errorf("could not update holding: %w", err)
		}

		trade = e.newTransaction(userID, order, total, models.TransactionBuy)
		if err := tx.Create(&trade).Error; err != nil {
			return fmt.Errorf("could not record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			l.Info("Buy rejected", zap.Error(err))
		} else {
			l.Error("Buy failed", zap.Error(err))
		}
		return nil, err
	}

	l.Info("Buy executed", zap.Uint("transaction_id", trade.ID))
	return &trade, nil
}

// Sell debits the holding, credits the order total to the balance and records
// a sell transaction. A holding sold down to zero is removed.
func (e *Engine) Sell(ctx context.Context, userID uint, order Order) (*models.Transaction, error) {
	order, err := order.validate()
	if err != nil {
		return nil, err
	}
	total := order.Total()

	l := e.logger.With(
		zap.Uint("user_id", userID),
		zap.String("symbol", order.Symbol),
		zap.Stringer("amount", order.Amount),
		zap.Stringer("price", order.Price),
		zap.Stringer("total", total),
	)

	var trade models.Transaction
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		holding, err := lockHolding(tx, userID, order.Symbol)
		if err != nil {
			return err
		}
		if holding == nil || holding.Amount.LessThan(order.Amount) {
			return ErrInsufficientHoldings
		}
		if order.Name == "" {
			order.Name = holding.Name
		}

		remaining := holding.Amount.Sub(order.Amount)
		if remaining.IsZero() {
			if err := tx.Delete(holding).Error; err != nil {
				return fmt.Errorf("could not remove holding: %w", err)
			}
		} else if err := tx.Model(holding).Update("amount", remaining).Error; err != nil {
			return fmt.Errorf("could not update holding: %w", err)
		}

		if err := setBalance(tx, user, user.Balance.Add(total)); err != nil {
			return err
		}

		trade = e.newTransaction(userID, order, total, models.TransactionSell)
		if err := tx.Create(&trade).Error; err != nil {
			return fmt.Errorf("could not record transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientHoldings) {
			l.Info("Sell rejected", zap.Error(err))
		} else {
			l.Error("Sell failed", zap.Error(err))
		}
		return nil, err
	}

	l.Info("Sell executed", zap.Uint("transaction_id", trade.ID))
	return &trade, nil
}

func (e *Engine) newTransaction(userID uint, order Order, total decimal.Decimal, side models.TransactionType) models.Transaction {
	return models.Transaction{
		UserID:    userID,
		Symbol:    order.Symbol,
		Name:      order.Name,
		Amount:    order.Amount,
		Price:     order.Price,
		Total:     total,
		Type:      side,
		Timestamp: e.now(),
	}
}

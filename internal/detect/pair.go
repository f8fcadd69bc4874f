package detect

import (
	"strings"

	"mev-sentinel/internal/domain"
)

// Pair matching rules. Relatedness only ever widens the competitor pool:
// two pairs relate when they are identical, reversed, or share at least one
// token symbol. Sharing a common quote token (two pairs both quoted in the
// same stablecoin) therefore also relates them; that is a known source of
// false positives, kept deliberately.

func reversedPair(trade domain.TradeIntent) string {
	return domain.NormalizePair(trade.TokenOut, trade.TokenIn)
}

// samePair reports an exact direction match.
func samePair(tx domain.PendingTransaction, trade domain.TradeIntent) bool {
	return tx.Pair() == trade.Pair()
}

// reverseDirection reports the exact opposite token order.
func reverseDirection(tx domain.PendingTransaction, trade domain.TradeIntent) bool {
	return tx.Pair() == reversedPair(trade)
}

// sharesToken reports whether the transaction trades at least one of the
// caller's tokens. Undecoded tokens never match.
func sharesToken(tx domain.PendingTransaction, trade domain.TradeIntent) bool {
	for _, txToken := range []string{tx.TokenIn, tx.TokenOut} {
		if txToken == domain.UnknownToken {
			continue
		}
		if equalSymbol(txToken, trade.TokenIn) || equalSymbol(txToken, trade.TokenOut) {
			return true
		}
	}
	return false
}

// related reports loose relatedness: identical, reversed, or sharing a
// token.
func related(tx domain.PendingTransaction, trade domain.TradeIntent) bool {
	return samePair(tx, trade) || reverseDirection(tx, trade) || sharesToken(tx, trade)
}

// sameDirection reports a same-direction competitor: the exact pair, or a
// related pair that is not the exact reverse.
func sameDirection(tx domain.PendingTransaction, trade domain.TradeIntent) bool {
	if samePair(tx, trade) {
		return true
	}
	if reverseDirection(tx, trade) {
		return false
	}
	return sharesToken(tx, trade)
}

func equalSymbol(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

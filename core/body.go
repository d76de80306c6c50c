package core

import "forkgraph/core/config"

// Body is the fixed-size transaction frame every block carries. Byte 0 is a
// transaction count N; it is followed by N records, each a length byte L
// followed by 5*(L+1) bytes of transaction data. Unused trailing bytes are
// zero.
type Body [config.BodySize]byte

// BuildBody packs txs, already in priority order, into a Body. It greedily
// appends records until the next one would overflow the frame, skipping any
// transaction whose padded data is empty. The count byte reflects exactly
// how many records were written.
func BuildBody(txs []*Transaction) Body {
	var b Body
	offset := 1
	count := 0
	for _, tx := range txs {
		if count >= config.MaxTxPerBody {
			break
		}
		l, ok := tx.lenByte()
		if !ok {
			continue
		}
		recordLen := 1 + 5*(int(l)+1)
		if offset+recordLen > config.BodySize {
			break
		}
		b[offset] = l
		copy(b[offset+1:offset+recordLen], tx.Data)
		offset += recordLen
		count++
	}
	b[0] = byte(count)
	return b
}

// ExtractTransactions unpacks the transactions packed into b, in the order
// they were written. Parsing stops at the declared count, at the end of the
// frame, or at the first truncated record, whichever comes first.
func ExtractTransactions(b Body) []*Transaction {
	count := int(b[0])
	var txs []*Transaction
	offset := 1
	for i := 0; i < count; i++ {
		if offset >= config.BodySize {
			break
		}
		l := b[offset]
		recordLen := 1 + 5*(int(l)+1)
		if offset+recordLen > config.BodySize {
			break
		}
		data := make([]byte, 5*(int(l)+1))
		copy(data, b[offset+1:offset+recordLen])
		txs = append(txs, &Transaction{Data: data, Hash: HashBytes(data)})
		offset += recordLen
	}
	return txs
}

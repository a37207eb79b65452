// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// stack is a simple LIFO of byte strings backing both the main and
// alternate stacks of the execution engine.
type stack struct {
	items [][]byte
}

func (s *stack) Depth() int { return len(s.items) }

func (s *stack) PushByteArray(b []byte) {
	s.items = append(s.items, b)
}

func (s *stack) PushBool(b bool) {
	s.PushByteArray(boolToStackData(b))
}

func (s *stack) PushInt(n scriptNum) {
	s.PushByteArray(n.Bytes())
}

// peekIdx returns the index from the top: 0 is the top item.
func (s *stack) peekIdx(idx int) (int, error) {
	i := len(s.items) - idx - 1
	if idx < 0 || i < 0 {
		return 0, scriptError(ErrInvalidStackOperation, "stack index out of range")
	}
	return i, nil
}

func (s *stack) PopByteArray() ([]byte, error) {
	i, err := s.peekIdx(0)
	if err != nil {
		return nil, err
	}
	v := s.items[i]
	s.items = s.items[:i]
	return v, nil
}

func (s *stack) PopBool() (bool, error) {
	b, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return stackDataToBool(b), nil
}

func (s *stack) PopInt(requireMinimal bool) (scriptNum, error) {
	b, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(b, requireMinimal, defaultScriptNumLen)
}

func (s *stack) PeekByteArray(idx int) ([]byte, error) {
	i, err := s.peekIdx(idx)
	if err != nil {
		return nil, err
	}
	return s.items[i], nil
}

func (s *stack) PeekInt(idx int, requireMinimal bool) (scriptNum, error) {
	b, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(b, requireMinimal, defaultScriptNumLen)
}

func (s *stack) PeekBool(idx int) (bool, error) {
	b, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return stackDataToBool(b), nil
}

// DropN removes the top n items.
func (s *stack) DropN(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.PopByteArray(); err != nil {
			return err
		}
	}
	return nil
}

// DupN duplicates the top n items, preserving relative order.
func (s *stack) DupN(n int) error {
	if n <= 0 {
		return scriptError(ErrInvalidStackOperation, "non-positive dup count")
	}
	for i := 0; i < n; i++ {
		v, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		s.PushByteArray(v)
	}
	return nil
}

// RotN rotates the top 3*n items, pulling the bottom-most n to the top.
func (s *stack) RotN(n int) error {
	if n <= 0 {
		return scriptError(ErrInvalidStackOperation, "non-positive rot count")
	}
	entry := 3 * n
	for i := 0; i < n; i++ {
		idx, err := s.peekIdx(entry - 1)
		if err != nil {
			return err
		}
		v := s.items[idx]
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		s.items = append(s.items, v)
	}
	return nil
}

// SwapN swaps the top n items with the n items below them.
func (s *stack) SwapN(n int) error {
	if n <= 0 {
		return scriptError(ErrInvalidStackOperation, "non-positive swap count")
	}
	entry := 2 * n
	for i := 0; i < n; i++ {
		a, err := s.peekIdx(entry - 1 - i)
		if err != nil {
			return err
		}
		b, err := s.peekIdx(entry - 1 - n - i)
		if err != nil {
			return err
		}
		s.items[a], s.items[b] = s.items[b], s.items[a]
	}
	return nil
}

// OverN copies the n items below the top n to the top.
func (s *stack) OverN(n int) error {
	if n <= 0 {
		return scriptError(ErrInvalidStackOperation, "non-positive over count")
	}
	entry := 2*n - 1
	for i := 0; i < n; i++ {
		idx, err := s.peekIdx(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(s.items[idx])
	}
	return nil
}

func (s *stack) NipN(idx int) error {
	i, err := s.peekIdx(idx)
	if err != nil {
		return err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *stack) Tuck() error {
	v, err := s.PeekByteArray(0)
	if err != nil {
		return err
	}
	i, err := s.peekIdx(1)
	if err != nil {
		return err
	}
	s.items = append(s.items[:i], append([][]byte{v}, s.items[i:]...)...)
	return nil
}

func (s *stack) PickN(n int) error {
	v, err := s.PeekByteArray(n)
	if err != nil {
		return err
	}
	s.PushByteArray(v)
	return nil
}

func (s *stack) RollN(n int) error {
	i, err := s.peekIdx(n)
	if err != nil {
		return err
	}
	v := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.items = append(s.items, v)
	return nil
}

package splice

// Options tune an expansion.
type Options struct {
	Duplicates DuplicatePolicy
}

// Result is the outcome of one expansion.
type Result struct {
	Block       *Block
	Value       ConcatenationResult
	Declaration string
}

// Expand parses src, registers its bindings, resolves and concatenates the
// requested names and renders the resulting declaration. Error positions are
// relative to src.
func Expand(src string, opts Options) (*Result, error) {
	block, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ExpandBlock(block, opts)
}

// ExpandBlock runs the expansion stages after parsing.
func ExpandBlock(block *Block, opts Options) (*Result, error) {
	reg := NewLiteralRegistry(opts.Duplicates)
	for _, b := range block.Bindings {
		if err := reg.Declare(b); err != nil {
			return nil, err
		}
	}

	value, err := Concatenate(reg, block.Request)
	if err != nil {
		return nil, err
	}

	return &Result{
		Block:       block,
		Value:       value,
		Declaration: Declaration(value),
	}, nil
}

package ast

import "testing"

func TestSeqEmptyAndSingle(t *testing.T) {
	if _, ok := Seq().(*SkipStatement); !ok {
		t.Fatalf("Seq() should be Skip")
	}
	only := Assign("x", Int(1))
	if Seq(only) != Statement(only) {
		t.Fatalf("Seq(single) should return the statement itself")
	}
}

func TestOperatorClassification(t *testing.T) {
	for _, op := range []Operator{OpPlus, OpMinus, OpTimes, OpDivide} {
		if !op.IsArithmetic() || op.IsComparison() {
			t.Fatalf("%s misclassified", op)
		}
	}
	for _, op := range []Operator{OpGt, OpGe, OpLt, OpLe} {
		if op.IsArithmetic() || !op.IsComparison() {
			t.Fatalf("%s misclassified", op)
		}
	}
	if _, err := ParseOperator("%"); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
	if op, err := ParseOperator("divide"); err != nil || op != OpDivide {
		t.Fatalf("ParseOperator(divide) = %v, %v", op, err)
	}
}

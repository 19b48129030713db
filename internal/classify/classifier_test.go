package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		description string
		want        Label
	}{
		{"Almoço no shopping", Food},
		{"Uber para o trabalho", Transport},
		{"xyzzy123", Other},
		{"Imprevisto com o carro", Unforeseen},
		{"  IMPREVISTO: geladeira quebrou", Unforeseen},
		{"Netflix mensal", Subscriptions},
		{"Amazon Prime anual", Subscriptions},
		{"Compra no Mercado Livre", Shopping},
		{"IPVA do carro", Taxes},
		{"Imposto de renda", Taxes},
		{"Gasolina no posto", Transport},
		{"Conta de gás", Utilities},
		{"Farmácia São João", Health},
		{"Mensalidade da faculdade", Education},
		{"Ingresso do cinema", Leisure},
		{"Tênis de corrida", Clothing},
		{"Corte de cabelo", Beauty},
		{"Ração do cachorro", Pets},
		{"Hotel em Gramado", Travel},
		{"Presente de aniversário", Gifts},
		{"Aporte no Tesouro Direto", Investments},
		{"Aluguel de março", Housing},
		{"Doações para a ONG", Gifts},
		{"Ações da Petrobras", Investments},
		{"Feira livre de domingo", Food},
		{"Sexta-feira no bar", Other},
		{"", Other},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := Classify(tt.description); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyPrefixOnlyAtStart(t *testing.T) {
	// "imprevisto" in the middle is not the prefix rule; keywords decide.
	if got := Classify("Oficina, foi um imprevisto"); got != Transport {
		t.Fatalf("expected keyword match, got %q", got)
	}
}

func TestFirstMatchWins(t *testing.T) {
	c := New([]Rule{
		{Label: "A", Keywords: []string{"conta"}},
		{Label: "B", Keywords: []string{"conta de luz"}},
	})
	if got := c.Classify("Conta de luz"); got != "A" {
		t.Fatalf("expected declaration order to win, got %q", got)
	}
}

func TestWholeWords(t *testing.T) {
	c := New([]Rule{{Label: "X", Words: []string{"Feira"}}})
	tests := []struct {
		text string
		want bool
	}{
		{"feira", true},
		{"Feira livre", true},
		{"na feira.", true},
		{"feira, feirante", true},
		{"feirante", false},
		{"sexta-feira", false},
		{"quarta-feira e feira-livre", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.Classify(tt.text) == "X"; got != tt.want {
				t.Errorf("match %q = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewNormalizesKeywords(t *testing.T) {
	c := New([]Rule{{Label: "X", Keywords: []string{"  AÇÚCAR ", ""}}})
	if got := c.Classify("acucar refinado"); got != "X" {
		t.Fatalf("expected normalized keyword match, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Almoço":          "almoco",
		"  ÔNIBUS  ":      "onibus",
		"Pão de Açúcar":   "pao de acucar",
		"already ascii":   "already ascii",
		"Eletrônico/Ção ": "eletronico/cao",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLabels(t *testing.T) {
	labels := Default.Labels()
	if labels[0] != Food {
		t.Fatalf("expected table order, first label %q", labels[0])
	}
	if labels[len(labels)-1] != Other || labels[len(labels)-2] != Unforeseen {
		t.Fatalf("expected fallback labels at the end: %v", labels)
	}
	seen := map[Label]bool{}
	for _, l := range labels {
		if seen[l] {
			t.Fatalf("duplicate label %q", l)
		}
		seen[l] = true
	}
}

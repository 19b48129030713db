package classify

// defaultRules is ordered: broad keywords that hide inside longer words
// ("posto" in "imposto", "gas" in "gasolina") sit below the rules that
// must claim those words first.
func defaultRules() []Rule {
	return []Rule{
		{Food, []string{
			"almoço", "jantar", "café", "lanche", "lanchonete", "restaurante", "padaria",
			"supermercado", "hipermercado", "mercadinho", "atacadão", "assaí", "carrefour",
			"pão de açúcar", "ifood", "uber eats", "rappi", "delivery", "pizza", "hambúrguer",
			"açougue", "hortifruti", "sorvete", "refeição", "marmita", "churrasco",
			"doceria", "comida",
		}, []string{"feira"}},
		{Subscriptions, []string{
			"netflix", "spotify", "assinatura", "amazon prime", "prime video", "disney",
			"hbo", "youtube premium", "deezer", "icloud", "google one", "globoplay",
		}, nil},
		{Taxes, []string{
			"imposto", "iptu", "ipva", "irpf", "darf", "taxa", "tarifa", "multa", "iof",
			"anuidade",
		}, nil},
		{Transport, []string{
			"uber", "99pop", "taxi", "táxi", "ônibus", "metrô", "gasolina", "combustível",
			"etanol", "estacionamento", "pedágio", "posto", "bilhete único", "oficina",
			"mecânico", "carro", "moto", "pneu", "lavagem",
		}, nil},
		{Housing, []string{
			"aluguel", "condomínio", "imobiliária", "reforma", "móveis", "financiamento",
			"mudança", "faxina", "diarista",
		}, nil},
		{Utilities, []string{
			"energia", "conta de luz", "luz", "água", "internet", "telefone", "celular",
			"gás", "enel", "sabesp", "cemig", "copel", "fibra",
		}, nil},
		{Health, []string{
			"farmácia", "drogaria", "remédio", "médico", "consulta", "exame", "hospital",
			"dentista", "plano de saúde", "academia", "psicólog", "terapia", "laboratório",
			"clínica",
		}, nil},
		{Education, []string{
			"escola", "faculdade", "universidade", "curso", "livro", "livraria", "apostila",
			"material escolar", "mensalidade", "udemy", "alura",
		}, nil},
		{Leisure, []string{
			"cinema", "show", "teatro", "ingresso", "parque", "festa", "balada", "jogo",
			"game", "steam", "playstation", "xbox", "museu", "passeio",
		}, nil},
		{Clothing, []string{
			"roupa", "camisa", "camiseta", "calça", "sapato", "tênis", "vestido", "blusa",
			"jaqueta", "renner", "riachuelo", "zara", "c&a", "bermuda",
		}, nil},
		{Beauty, []string{
			"salão", "cabelo", "barbearia", "manicure", "cosmético", "perfume", "maquiagem",
			"estética", "boticário", "natura", "depilação",
		}, nil},
		{Pets, []string{
			"pet shop", "petshop", "veterinári", "ração", "banho e tosa",
		}, nil},
		{Travel, []string{
			"viagem", "hotel", "passagem aérea", "aéreo", "airbnb", "hospedagem", "pousada",
			"voo", "aeroporto", "hostel",
		}, nil},
		{Shopping, []string{
			"shopping", "loja", "amazon", "mercado livre", "magalu", "shopee", "aliexpress",
			"americanas", "compra", "eletrônico",
		}, nil},
		{Gifts, []string{
			"presente", "aniversário", "natal", "doaç", "dia das mães", "dia dos pais",
		}, nil},
		{Investments, []string{
			"investimento", "tesouro", "cdb", "poupança", "aporte", "corretora",
			"cripto", "bitcoin", "previdência",
		}, []string{"ações", "ação"}},
	}
}

package booking

import (
	"fmt"
	"strings"

	"RideDesk/bot/chat"
	"RideDesk/entity"
	"RideDesk/internal/catalog"
	"RideDesk/internal/service/fare"
)

const (
	textAskOrigin      = "Por favor, digite o endereço de partida:"
	textAskDestination = "Por favor, digite o endereço de destino:"
	textAskName        = "📝 *Ótimo! Para finalizar, qual o seu nome completo?*"
	textAskPassengers  = "👥 Quantas pessoas vão viajar?"

	titleOtherSection  = "📝 Outro"
	titleOtherLocation = "✏️ Digitar outro endereço"

	notificationTimeLayout = "02/01/2006 15:04:05"
)

// texts renders the customer and driver facing messages from the catalog.
type texts struct {
	catalog *catalog.Catalog
}

func (t texts) welcome() chat.OutboundMessage {
	d := t.catalog.Driver
	body := fmt.Sprintf("🚗 *Olá! Eu sou o %s!*\nMotorista particular em *%s*.\n\nComo posso te ajudar hoje?", d.Name, d.City)
	return chat.ButtonMessage(body,
		chat.Button{ID: ActionStartQuote, Title: "🎯 Fazer Cotação"},
		chat.Button{ID: ActionShowPrices, Title: "💰 Ver Preços"},
		chat.Button{ID: ActionDirectContact, Title: "📞 Contato Direto"},
	)
}

func (t texts) footer() string {
	return t.catalog.Driver.Name + " Motorista"
}

func locationSection(title string, list []catalog.Location) chat.ListSection {
	s := chat.ListSection{Title: title}
	for _, l := range list {
		s.Rows = append(s.Rows, chat.ListRow{ID: LocationID(l.Name), Title: l.Name})
	}
	return s
}

func otherSection() chat.ListSection {
	return chat.ListSection{
		Title: titleOtherSection,
		Rows:  []chat.ListRow{{ID: EscapeID, Title: titleOtherLocation}},
	}
}

// appendNonEmpty skips categories without locations; a list section may not be empty.
func appendNonEmpty(sections []chat.ListSection, s chat.ListSection) []chat.ListSection {
	if len(s.Rows) == 0 {
		return sections
	}
	return append(sections, s)
}

func (t texts) originList() chat.OutboundMessage {
	var sections []chat.ListSection
	sections = appendNonEmpty(sections, locationSection("🏢 Locais Urbanos", t.catalog.Locations.Urban))
	sections = appendNonEmpty(sections, locationSection("🌾 Zona Rural", t.catalog.Locations.Rural))
	sections = append(sections, otherSection())

	return chat.ListMessage(
		"Ponto de Partida",
		"Selecione seu local de partida na lista ou escolha a opção para digitar um endereço.",
		t.footer(),
		"Ver Locais",
		sections...,
	)
}

func (t texts) destinationList(origin string) chat.OutboundMessage {
	var sections []chat.ListSection
	sections = appendNonEmpty(sections, locationSection("🏢 Locais Urbanos", t.catalog.Locations.Urban))
	sections = appendNonEmpty(sections, locationSection("🌾 Zona Rural", t.catalog.Locations.Rural))
	sections = appendNonEmpty(sections, locationSection("🏙️ Cidades Vizinhas", t.catalog.Locations.Neighboring))
	sections = append(sections, otherSection())

	return chat.ListMessage(
		"Destino da Viagem",
		fmt.Sprintf("Origem: *%s*\n\nSelecione o destino na lista ou escolha a opção para digitar.", origin),
		"",
		"Ver Destinos",
		sections...,
	)
}

func passengerButtons() chat.OutboundMessage {
	return chat.ButtonMessage(textAskPassengers,
		chat.Button{ID: PassengersID(1), Title: "1 Passageiro"},
		chat.Button{ID: PassengersID(2), Title: "2 Passageiros"},
		chat.Button{ID: PassengersID(3), Title: "3 ou mais"},
	)
}

func (t texts) priceTable() chat.OutboundMessage {
	var sb strings.Builder
	sb.WriteString("💰 *TABELA DE PREÇOS (BASE)*\n\n")
	fmt.Fprintf(&sb, "*Urbanos:* a partir de R$ %s\n", fare.FormatMoneyBR(t.catalog.MinPrice(catalog.CategoryUrban)))
	fmt.Fprintf(&sb, "*Rurais:* a partir de R$ %s\n", fare.FormatMoneyBR(t.catalog.MinPrice(catalog.CategoryRural)))
	fmt.Fprintf(&sb, "*Cidades Vizinhas:* a partir de R$ %s\n\n", fare.FormatMoneyBR(t.catalog.MinPrice(catalog.CategoryNeighboring)))
	sb.WriteString("*Acréscimos por Passageiros:*\n")
	fmt.Fprintf(&sb, "• 3 ou mais: +%.0f%%", (t.catalog.Multiplier(3)-1)*100)
	return chat.TextMessage(sb.String())
}

func (t texts) contact() chat.OutboundMessage {
	d := t.catalog.Driver
	return chat.TextMessage(fmt.Sprintf("📞 *CONTATO DIRETO*\n\n*Nome:* %s\n*WhatsApp/Telefone:* %s\n*PIX:* %s",
		d.Name, d.Phone, d.Pix))
}

func quoteSummary(trip entity.TripDraft) chat.OutboundMessage {
	q := trip.Quote
	var sb strings.Builder
	sb.WriteString("💰 *COTAÇÃO DA VIAGEM*\n\n")
	fmt.Fprintf(&sb, "📍 *Origem:* %s\n", trip.Origin)
	fmt.Fprintf(&sb, "🎯 *Destino:* %s\n", trip.Destination)
	fmt.Fprintf(&sb, "👥 *Passageiros:* %d\n\n", trip.Passengers)
	fmt.Fprintf(&sb, "💵 *Valor Base:* R$ %s\n", fare.FormatMoney(q.BaseFare))
	if q.Surcharge > 0 {
		fmt.Fprintf(&sb, "➕ *Acréscimo:* R$ %s\n", fare.FormatMoney(q.Surcharge))
	}
	fmt.Fprintf(&sb, "💰 *VALOR TOTAL: R$ %s*\n", fare.FormatMoney(q.Total))
	fmt.Fprintf(&sb, "⏱️ *Tempo Estimado:* %d minutos\n\n", q.EstimatedMinutes)
	sb.WriteString("Tudo certo para confirmar?")

	return chat.ButtonMessage(sb.String(),
		chat.Button{ID: ActionConfirmTrip, Title: "✅ Confirmar"},
		chat.Button{ID: ActionNewQuote, Title: "🔄 Nova Cotação"},
	)
}

func askContact(name string) chat.OutboundMessage {
	return chat.TextMessage(fmt.Sprintf("Obrigado, %s!\n\n📱 Agora, por favor, informe um número de telefone para contato (com DDD).", name))
}

func (t texts) customerConfirmation(b *entity.Booking) chat.OutboundMessage {
	d := t.catalog.Driver
	var sb strings.Builder
	sb.WriteString("✅ *VIAGEM CONFIRMADA!*\n\n")
	fmt.Fprintf(&sb, "Obrigado, %s! Estarei no local de partida em breve.\n\n", b.Customer.Name)
	sb.WriteString("*Resumo:*\n")
	fmt.Fprintf(&sb, "*De:* %s\n", b.Origin)
	fmt.Fprintf(&sb, "*Para:* %s\n", b.Destination)
	fmt.Fprintf(&sb, "*Valor:* R$ %s\n\n", fare.FormatMoney(b.Total))
	fmt.Fprintf(&sb, "*Motorista:* %s\n", d.Name)
	fmt.Fprintf(&sb, "*Veículo:* %s (%s)\n", d.Vehicle.Model, d.Vehicle.Plate)
	fmt.Fprintf(&sb, "*PIX:* %s", d.Pix)
	return chat.TextMessage(sb.String())
}

func driverNotification(b *entity.Booking) chat.OutboundMessage {
	wa, _, _ := strings.Cut(b.Customer.WhatsApp, "@")
	var sb strings.Builder
	sb.WriteString("🔔 *NOVA CORRIDA CONFIRMADA* 🔔\n\n")
	fmt.Fprintf(&sb, "*Cliente:* %s\n", b.Customer.Name)
	fmt.Fprintf(&sb, "*Contato:* %s\n", b.Customer.Contact)
	fmt.Fprintf(&sb, "*WhatsApp:* wa.me/%s\n\n", wa)
	fmt.Fprintf(&sb, "*Origem:* %s\n", b.Origin)
	fmt.Fprintf(&sb, "*Destino:* %s\n", b.Destination)
	fmt.Fprintf(&sb, "*Passageiros:* %d\n", b.Passengers)
	fmt.Fprintf(&sb, "*Valor:* R$ %s\n", fare.FormatMoney(b.Total))
	fmt.Fprintf(&sb, "*Horário:* %s", b.CreatedAt.Format(notificationTimeLayout))
	return chat.TextMessage(sb.String())
}

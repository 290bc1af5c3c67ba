package gazetteer

// defaultSettlements is the built-in Northern Ireland settlement table,
// derived from the NISRA settlement classification bands. Used when no
// settlements file is configured.
var defaultSettlements = []Settlement{
	// Small towns
	{Name: "Comber", Class: SmallTown},
	{Name: "Carryduff", Class: SmallTown},
	{Name: "Holywood", Class: SmallTown},
	{Name: "Donaghadee", Class: SmallTown},
	{Name: "Ballynahinch", Class: SmallTown},
	{Name: "Newcastle", Class: SmallTown},
	{Name: "Warrenpoint", Class: SmallTown},
	{Name: "Ballyclare", Class: SmallTown},
	{Name: "Dromore", Class: SmallTown},
	{Name: "Crumlin", Class: SmallTown},
	{Name: "Randalstown", Class: SmallTown},
	{Name: "Greenisland", Class: SmallTown},
	{Name: "Whitehead", Class: SmallTown},
	{Name: "Portstewart", Class: SmallTown},
	{Name: "Portrush", Class: SmallTown},
	{Name: "Magherafelt", Class: SmallTown},
	{Name: "Kilkeel", Class: SmallTown},

	// Medium towns
	{Name: "Downpatrick", Class: MediumTown},
	{Name: "Larne", Class: MediumTown},
	{Name: "Armagh", Class: MediumTown},
	{Name: "Dungannon", Class: MediumTown},
	{Name: "Enniskillen", Class: MediumTown},
	{Name: "Strabane", Class: MediumTown},
	{Name: "Limavady", Class: MediumTown},
	{Name: "Cookstown", Class: MediumTown},
	{Name: "Banbridge", Class: MediumTown},
	{Name: "Omagh", Class: MediumTown},

	// Large towns
	{Name: "Belfast", Class: LargeTown},
	{Name: "Lisburn", Class: LargeTown},
	{Name: "Newtownabbey", Class: LargeTown},
	{Name: "Bangor", Class: LargeTown},
	{Name: "Newtownards", Class: LargeTown},
	{Name: "Craigavon", Class: LargeTown},
	{Name: "Castlereagh", Class: LargeTown},
	{Name: "Ballymena", Class: LargeTown},
	{Name: "Carrickfergus", Class: LargeTown},
	{Name: "Coleraine", Class: LargeTown},
	{Name: "Antrim", Class: LargeTown},
	{Name: "Lurgan", Class: LargeTown},
	{Name: "Portadown", Class: LargeTown},
	{Name: "Newry", Class: LargeTown},

	// Small villages and hamlets
	{Name: "Ballystockart", Class: SmallVillageOrHamlet},
	{Name: "Loughries", Class: SmallVillageOrHamlet},
	{Name: "Ardmillan", Class: SmallVillageOrHamlet},
	{Name: "Ballydrain", Class: SmallVillageOrHamlet},

	// Villages
	{Name: "Crossgar", Class: Village},
	{Name: "Killyleagh", Class: Village},
	{Name: "Saintfield", Class: Village},
	{Name: "Hillsborough", Class: Village},
	{Name: "Groomsport", Class: Village},
	{Name: "Millisle", Class: Village},
	{Name: "Glenavy", Class: Village},
	{Name: "Doagh", Class: Village},
	{Name: "Killinchy", Class: Village},
	{Name: "Moira", Class: Village},
	{Name: "Dundonald", Class: Village},

	// Intermediate settlements
	{Name: "Ballygowan", Class: IntermediateSettlement},
	{Name: "Moneyreagh", Class: IntermediateSettlement},
	{Name: "Greyabbey", Class: IntermediateSettlement},
	{Name: "Kircubbin", Class: IntermediateSettlement},
	{Name: "Carrowdore", Class: IntermediateSettlement},
}

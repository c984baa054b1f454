package domain

// LibraryImages is the curated floor-plan catalog offered for selection in
// the client. IDs are stable and may be referenced by submissions.
var LibraryImages = []LibraryImage{
	{
		ID:    "washroom",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808691940954223/BathRoom.png?ex=68bd4773&is=68bbf5f3&hm=33991d25f72d1a6c5c07625e9091f79948350706940afe9b5bd8d5afcd3e9734&=&format=webp&quality=lossless&width=1715&height=1483",
		Title: "Washroom",
	},
	{
		ID:    "bedroom",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808693006307410/BedRoom.png?ex=68bd4773&is=68bbf5f3&hm=839a83be4ab9ff57346ccb730b24d627e530738f8db22221180d378784fda34d&=&format=webp&quality=lossless&width=1390&height=1483",
		Title: "Bedroom",
	},
	{
		ID:    "drawingroom",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413842013874425866/DrawingRoom.png?ex=68bd667c&is=68bc14fc&hm=4f61a731043df51771c36c52117817d4e0baf334cfb531546b625df5ad5410bb&=&format=webp&quality=lossless&width=1510&height=1670",
		Title: "Drawing Room",
	},
	{
		ID:    "kitchen",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808694143090739/Kitchen.png?ex=68bd4773&is=68bbf5f3&hm=a4bdce0ede5505ee4be485c8988fa04d7fc164d5200e37c7fe85ec609208d351&=&format=webp&quality=lossless&width=1921&height=1483",
		Title: "Kitchen",
	},
	{
		ID:    "kitchen2",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808694742749285/Kitchen2.png?ex=68bd4774&is=68bbf5f4&hm=2801900301c5349c570b4cb0912cd48c8789b810d0f76789751a724466d09542&=&format=webp&quality=lossless&width=1440&height=1354",
		Title: "Kitchen 2",
	},
	{
		ID:    "kitchen3",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808695372152974/Kitchen3.png?ex=68bd4774&is=68bbf5f4&hm=2f48c6088f656b6c7e66b4e9f525e0b7855104364175c28ecb52c3d7a32c92fe&=&format=webp&quality=lossless&width=1012&height=1483",
		Title: "Kitchen 3",
	},
	{
		ID:    "washroom2",
		URL:   "https://media.discordapp.net/attachments/1393277866690478110/1413808695736926268/Toilet.png?ex=68bd4774&is=68bbf5f4&hm=85cb65f4e6392948d99c2ecf6d95e3617f3bc80e1d6a3f4294fda682da289708&=&format=webp&quality=lossless&width=810&height=1483",
		Title: "Washroom",
	},
}
